package smp

import (
	"github.com/bwmarrin/discordgo"
)

// verifyCommandHandler posts the public verification panel.
func (h *Handler) verifyCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: BuildVerifyPanel(h.community),
	})
	if err != nil {
		h.logger.Error("error posting verify panel", "error", err)
	}
}

// verifyButtonHandler sends the web verification link privately.
func (h *Handler) verifyButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{BuildVerifyLinkEmbed(h.community, h.verificationURL)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Error("error sending verification link", "error", err)
	}
}
