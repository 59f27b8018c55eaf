package smp

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// addHistoricalCommandHandler records a user in the ledger by hand.
func (h *Handler) addHistoricalCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.authorize(s, i) {
		return
	}

	target, member := optionUser(i, "user")
	if target == nil {
		h.respondEphemeral(s, i, "❌ Please choose a user to add.")
		return
	}

	if !h.deferEphemeral(s, i) {
		return
	}

	h.background(func(ctx context.Context) {
		if !h.addHistorical(ctx, target, member) {
			h.editContent(s, i, fmt.Sprintf("ℹ️ %s is already in the historical database!", mention(target.ID)))
			return
		}

		h.logger.Info("historical user added",
			"user_id", target.ID,
			"admin_user_id", i.Member.User.ID)
		h.editEmbed(s, i, BuildHistoricalAddedEmbed(target.ID, h.community))
	})
}

// addHistorical records target unless the ledger already has it.
func (h *Handler) addHistorical(ctx context.Context, target *discordgo.User, member *discordgo.Member) bool {
	if h.ledger.Contains(ctx, target.ID) {
		return false
	}
	h.ledger.Upsert(ctx, target.ID, displayName(target, member))
	return true
}
