package smp

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smpverify/handler"
	"smpverify/model"
	"smpverify/verify"
)

func fieldValues(embed *discordgo.MessageEmbed) map[string]string {
	out := make(map[string]string, len(embed.Fields))
	for _, f := range embed.Fields {
		out[f.Name] = f.Value
	}
	return out
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr error
	}{
		{in: "1", want: 1},
		{in: " 5 ", want: 5},
		{in: "0", wantErr: ErrRatingOutOfRange},
		{in: "6", wantErr: ErrRatingOutOfRange},
		{in: "x", wantErr: ErrRatingNotNumber},
		{in: "", wantErr: ErrRatingNotNumber},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRating(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "❌ Rating must be between 1 and 5 stars!", ratingErrorMessage(ErrRatingOutOfRange))
	assert.Equal(t, "❌ Rating must be a number between 1 and 5!", ratingErrorMessage(ErrRatingNotNumber))
}

func TestBuildVouchEmbed(t *testing.T) {
	embed := BuildVouchEmbed(Vouch{
		TargetUserID: "42",
		Rating:       3,
		Message:      "  great trade  ",
		Submitter:    "Mod Steve",
		SubmitterTop: "Moderator",
	})

	fields := fieldValues(embed)
	assert.Equal(t, "🌟 Vouch", embed.Title)
	assert.Equal(t, "<@42>", fields["User:"])
	assert.Equal(t, "⭐⭐⭐ (3/5)", fields["Rating:"])
	assert.Equal(t, "great trade", fields["Review:"])
	assert.Equal(t, "Submitted by Mod Steve, Role: Moderator", embed.Footer.Text)

	noMessage := BuildVouchEmbed(Vouch{TargetUserID: "42", Rating: 5})
	assert.NotContains(t, fieldValues(noMessage), "Review:")
}

func TestBuildLookupEmbed(t *testing.T) {
	first := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	record := &model.VerifiedUser{UserID: "42", FirstVerified: first, LastVerified: first}

	t.Run("current", func(t *testing.T) {
		v := model.Verdict{Verified: true, Source: model.SourceCurrent, Status: verify.CurrentLabel("DonutSMP"), Record: record}
		embed := BuildLookupEmbed("42", "steve", "DonutSMP", v)

		fields := fieldValues(embed)
		assert.Equal(t, colorGreen, embed.Color)
		assert.Equal(t, "✅ Yes", fields["Current Member:"])
		assert.Equal(t, "Currently in DonutSMP", fields["Status:"])
		assert.Equal(t, "✅ Verified", fields["Overall Status:"])
		assert.NotContains(t, fields, "First Verified:")
	})

	t.Run("historical shows first verified date", func(t *testing.T) {
		v := model.Verdict{Verified: true, Source: model.SourceHistorical, Status: verify.HistoricalLabel, Record: record}
		fields := fieldValues(BuildLookupEmbed("42", "steve", "DonutSMP", v))

		assert.Equal(t, "✅ Yes", fields["Historical Member:"])
		assert.Equal(t, "2024-03-09", fields["First Verified:"])
	})

	t.Run("banned", func(t *testing.T) {
		v := model.Verdict{Verified: true, Source: model.SourceBanned, Status: verify.BannedLabel("DonutSMP", "")}
		fields := fieldValues(BuildLookupEmbed("42", "steve", "DonutSMP", v))

		assert.Equal(t, "✅ Yes", fields["Banned:"])
		assert.Equal(t, "Banned from DonutSMP: No reason provided", fields["Status:"])
	})

	t.Run("never with degraded note and ledger hint", func(t *testing.T) {
		v := model.Verdict{Source: model.SourceNone, Status: verify.NeverLabel("DonutSMP"), Evidence: model.Evidence{Degraded: true}}
		embed := BuildLookupEmbed("42", "steve", "DonutSMP", v)

		fields := fieldValues(embed)
		assert.Equal(t, colorRed, embed.Color)
		assert.Equal(t, "Never been in DonutSMP", fields["Status:"])
		assert.Equal(t, "❌ Not Verified", fields["Overall Status:"])
		assert.Contains(t, fields, "⚠️ Note:")
		assert.Contains(t, fields["Add to Historical Database:"], "smpverify ledger add 42 steve")
	})
}

func TestBuildReviewModal(t *testing.T) {
	data := BuildReviewModal("abc")

	assert.Equal(t, reviewModalID, handler.HandlerKey(data.CustomID))
	require.Len(t, data.Components, 2)
	rating := data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	assert.Equal(t, 1, rating.MaxLength)
	assert.True(t, rating.Required)
	message := data.Components[1].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	assert.Equal(t, maxReviewLength, message.MaxLength)
	assert.False(t, message.Required)
}

func TestBuildVerifyPanel(t *testing.T) {
	data := BuildVerifyPanel("DonutSMP")

	require.Len(t, data.Embeds, 1)
	assert.Equal(t, "🔐 DonutSMP Verification", data.Embeds[0].Title)
	button := data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.Equal(t, verifyButtonID, button.CustomID)
	assert.Equal(t, discordgo.SuccessButton, button.Style)
}

func TestBuildVerifyLinkEmbed(t *testing.T) {
	embed := BuildVerifyLinkEmbed("DonutSMP", "https://verify.example")
	assert.Equal(t, "[Click here to verify](https://verify.example/)", fieldValues(embed)["Verification Link"])
}

func TestBuildHistoricalAddedEmbed(t *testing.T) {
	embed := BuildHistoricalAddedEmbed("42", "DonutSMP")

	assert.Equal(t, "✅ User Added to Historical Database", embed.Title)
	fields := fieldValues(embed)
	assert.Equal(t, "<@42>", fields["User:"])
	assert.Equal(t, "`42`", fields["User ID:"])
	assert.Equal(t, "Added as historical DonutSMP member", fields["Status:"])
}
