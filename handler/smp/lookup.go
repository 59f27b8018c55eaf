package smp

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// lookupCommandHandler handles /smp: runs the full verification for a user.
func (h *Handler) lookupCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.authorize(s, i) {
		return
	}

	target, member := optionUser(i, "user")
	if target == nil {
		h.respondEphemeral(s, i, "❌ Please choose a user to check.")
		return
	}

	if !h.deferEphemeral(s, i) {
		return
	}

	h.background(func(ctx context.Context) {
		h.editEmbed(s, i, h.lookup(ctx, target, member))
	})
}

// lookup decides target and renders the result. The name passed to the
// engine is the one stored in the ledger, so it matches /add_historical.
func (h *Handler) lookup(ctx context.Context, target *discordgo.User, member *discordgo.Member) *discordgo.MessageEmbed {
	name := displayName(target, member)
	v := h.engine.Decide(ctx, target.ID, name)
	return BuildLookupEmbed(target.ID, name, h.community, v)
}
