package smp

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// setVouchesChannelCommandHandler changes where reviews are posted.
func (h *Handler) setVouchesChannelCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.authorize(s, i) {
		return
	}

	channelID := optionString(i, "channel")
	if channelID == "" {
		h.respondEphemeral(s, i, "❌ Please choose a text channel.")
		return
	}

	h.reviews.Set(channelID)
	h.logger.Info("vouches channel set", "channel_id", channelID, "admin_user_id", i.Member.User.ID)
	h.respondEphemeral(s, i, fmt.Sprintf("✅ Vouches channel set to <#%s>", channelID))
}

func optionString(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			v, _ := opt.Value.(string)
			return v
		}
	}
	return ""
}
