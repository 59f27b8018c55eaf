package smp

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"smpverify/model"
	"smpverify/utils"
)

// reviewCommandHandler opens the review form for the chosen user.
func (h *Handler) reviewCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.authorize(s, i) {
		return
	}

	target, _ := optionUser(i, "user")
	if target == nil {
		h.respondEphemeral(s, i, "❌ Please choose a user to review.")
		return
	}

	id := h.pending.Add(model.PendingReview{
		TargetUserID: target.ID,
		AdminUserID:  i.Member.User.ID,
	})

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: BuildReviewModal(id),
	})
	if err != nil {
		h.pending.Remove(id)
		h.logger.Error("error creating review modal", "error", err)
	}
}

// reviewModalHandler validates the form and posts the vouch.
func (h *Handler) reviewModalHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	_, pendingID, _ := strings.Cut(data.CustomID, ":")

	review, ok := h.pending.Get(pendingID)
	if !ok || i.Member == nil || i.Member.User == nil || review.AdminUserID != i.Member.User.ID {
		h.respondEphemeral(s, i, "❌ This review form has expired. Please run /rev again.")
		return
	}

	values := modalValues(data)
	rating, err := ParseRating(values["rating"])
	if err != nil {
		h.respondEphemeral(s, i, ratingErrorMessage(err))
		return
	}

	guild := guildFromState(s, i.GuildID)
	channelID, found := h.reviews.Resolve(h.guildChannels(s, guild, i.GuildID))
	if !found {
		h.respondEphemeral(s, i, fmt.Sprintf("❌ Vouches channel not found. Make sure you have a channel with '%s' in the name!", h.reviews.Keyword()))
		return
	}
	h.pending.Remove(pendingID)

	if !h.deferEphemeral(s, i) {
		return
	}

	vouch := Vouch{
		TargetUserID: review.TargetUserID,
		Rating:       rating,
		Message:      values["message"],
		Submitter:    i.Member.DisplayName(),
		SubmitterTop: utils.TopRole(i.Member, guild),
	}

	h.background(func(ctx context.Context) {
		msg, err := s.ChannelMessageSendEmbed(channelID, BuildVouchEmbed(vouch), discordgo.WithContext(ctx))
		if err != nil {
			h.logger.Error("error posting vouch", "channel_id", channelID, "error", err)
			h.editContent(s, i, "❌ Could not post the review to the vouches channel.")
			return
		}

		// 添加反应
		for _, emoji := range []string{"👍", "✅"} {
			if err := s.MessageReactionAdd(channelID, msg.ID, emoji, discordgo.WithContext(ctx)); err != nil {
				h.logger.Warn("error adding reaction", "emoji", emoji, "error", err)
			}
		}

		h.logger.Info("review posted",
			"target_user_id", vouch.TargetUserID,
			"admin_user_id", review.AdminUserID,
			"rating", rating)
		h.editContent(s, i, fmt.Sprintf("✅ Review submitted for %s!", mention(vouch.TargetUserID)))
	})
}

func (h *Handler) guildChannels(s *discordgo.Session, guild *discordgo.Guild, guildID string) []*discordgo.Channel {
	if guild != nil && len(guild.Channels) > 0 {
		return guild.Channels
	}
	if h.reviews.ID() != "" || s == nil {
		return nil
	}
	channels, err := s.GuildChannels(guildID)
	if err != nil {
		h.logger.Warn("error listing guild channels", "guild_id", guildID, "error", err)
		return nil
	}
	return channels
}

// modalValues collects text input values by custom ID.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, component := range data.Components {
		if actionRow, ok := component.(*discordgo.ActionsRow); ok {
			for _, comp := range actionRow.Components {
				if textInput, ok := comp.(*discordgo.TextInput); ok {
					values[textInput.CustomID] = textInput.Value
				}
			}
		}
	}
	return values
}
