package smp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"smpverify/model"
)

const (
	colorGreen = 0x2ECC71
	colorRed   = 0xE74C3C
	colorBlue  = 0x3498DB
	colorGold  = 0xF1C40F

	maxReviewLength = 1000
)

// BuildVerifyPanel builds the public /verify message with its button.
func BuildVerifyPanel(community string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       fmt.Sprintf("🔐 %s Verification", community),
			Description: fmt.Sprintf("Click the button below to verify your %s membership!", community),
			Color:       colorGreen,
			Fields: []*discordgo.MessageEmbedField{{
				Name:  "📋 How it works:",
				Value: fmt.Sprintf("1. Click the verify button\n2. Login with Discord\n3. We check if you're in %s\n4. Get verified instantly!", community),
			}},
			Footer: &discordgo.MessageEmbedFooter{Text: "Privacy focused - only your membership status is kept"},
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "✅ Verify",
						Style:    discordgo.SuccessButton,
						CustomID: verifyButtonID,
					},
				},
			},
		},
	}
}

// BuildVerifyLinkEmbed is the private reply to the verify button.
func BuildVerifyLinkEmbed(community, verificationURL string) *discordgo.MessageEmbed {
	link := strings.TrimRight(verificationURL, "/") + "/"
	return &discordgo.MessageEmbed{
		Title:       "🔐 Discord Verification",
		Description: fmt.Sprintf("Click the link below to verify your %s membership:", community),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Verification Link",
				Value: fmt.Sprintf("[Click here to verify](%s)", link),
			},
			{
				Name:  "📋 Instructions",
				Value: fmt.Sprintf("1. Click the verification link\n2. Login with Discord\n3. We'll check if you're in %s\n4. Return here once verified!", community),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "We only check server membership"},
	}
}

// BuildReviewModal builds the /rev form for the pending review id.
func BuildReviewModal(pendingID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: reviewModalID + ":" + pendingID,
		Title:    "Submit Review",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "rating",
						Label:       "Rating (1-5 stars)",
						Style:       discordgo.TextInputShort,
						Placeholder: "Enter a number from 1 to 5",
						MinLength:   1,
						MaxLength:   1,
						Required:    true,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "message",
						Label:       "Review Message (Optional)",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Enter your review message...",
						MaxLength:   maxReviewLength,
						Required:    false,
					},
				},
			},
		},
	}
}

// ParseRating validates the modal's rating field.
func ParseRating(raw string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrRatingNotNumber
	}
	if rating < 1 || rating > 5 {
		return 0, ErrRatingOutOfRange
	}
	return rating, nil
}

func ratingErrorMessage(err error) string {
	if errors.Is(err, ErrRatingOutOfRange) {
		return "❌ Rating must be between 1 and 5 stars!"
	}
	return "❌ Rating must be a number between 1 and 5!"
}

// Vouch is one submitted review.
type Vouch struct {
	TargetUserID string
	Rating       int
	Message      string
	Submitter    string
	SubmitterTop string
}

func BuildVouchEmbed(v Vouch) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🌟 Vouch",
		Color: colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User:", Value: mention(v.TargetUserID)},
			{Name: "Rating:", Value: fmt.Sprintf("%s (%d/5)", strings.Repeat("⭐", v.Rating), v.Rating)},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Submitted by %s, Role: %s", v.Submitter, v.SubmitterTop),
		},
	}
	if msg := strings.TrimSpace(v.Message); msg != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Review:", Value: msg})
	}
	return embed
}

// BuildLookupEmbed renders a /smp verdict.
func BuildLookupEmbed(targetUserID, targetName, community string, v model.Verdict) *discordgo.MessageEmbed {
	color := colorRed
	if v.Verified {
		color = colorGreen
	}
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🔍 %s Membership Check", community),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User:", Value: mention(targetUserID)},
		},
	}
	add := func(name, value string, inline bool) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline})
	}

	switch v.Source {
	case model.SourceCurrent:
		add("Current Member:", "✅ Yes", true)
		add("Status:", v.Status, true)
	case model.SourceBanned:
		add("Current Member:", "❌ No", true)
		add("Banned:", "✅ Yes", true)
		add("Status:", v.Status, true)
	case model.SourceHistorical:
		add("Current Member:", "❌ No", true)
		add("Historical Member:", "✅ Yes", true)
		add("Status:", "Previously verified", true)
	default:
		add("Current Member:", "❌ No", true)
		add("Historical Member:", "❌ No", true)
		add("Status:", v.Status, true)
	}

	if v.Record != nil && v.Source != model.SourceCurrent {
		add("First Verified:", v.Record.FirstVerified.Format("2006-01-02"), true)
	}

	overall := "❌ Not Verified"
	if v.Verified {
		overall = "✅ Verified"
	}
	add("Overall Status:", overall, false)

	if v.Evidence.Degraded {
		add("⚠️ Note:", fmt.Sprintf("Live %s data was unavailable; the result may rely on the ledger only.", community), false)
	}

	if !v.Verified {
		name := targetName
		if name == "" {
			name = "<username>"
		}
		add("Add to Historical Database:",
			fmt.Sprintf("Use `/add_historical` or run\n```\nsmpverify ledger add %s %s\n```", targetUserID, name), false)
	}
	return embed
}

func BuildHistoricalAddedEmbed(targetUserID, community string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "✅ User Added to Historical Database",
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User:", Value: mention(targetUserID)},
			{Name: "User ID:", Value: fmt.Sprintf("`%s`", targetUserID), Inline: true},
			{Name: "Status:", Value: fmt.Sprintf("Added as historical %s member", community)},
		},
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}
