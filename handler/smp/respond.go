package smp

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"smpverify/utils"
)

const denyMessage = "❌ You don't have permission to use this command!"

func (h *Handler) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Error("interaction respond failed", "error", err)
	}
}

// deferEphemeral acknowledges i so the follow-up may take longer than
// Discord's three second window.
func (h *Handler) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral, // 结果仅对用户可见
		},
	})
	if err != nil {
		h.logger.Error("error sending deferred response", "error", err)
		return false
	}
	return true
}

func (h *Handler) editContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: utils.StringPtr(content),
	}); err != nil {
		h.logger.Error("interaction edit failed", "error", err)
	}
}

func (h *Handler) editEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		h.logger.Error("interaction edit failed", "error", err)
	}
}

// authorize replies with the denial message and returns false when the
// invoking member is not privileged.
func (h *Handler) authorize(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if utils.IsPrivileged(i.Member, guildFromState(s, i.GuildID), h.auth) {
		return true
	}
	h.respondEphemeral(s, i, denyMessage)
	return false
}

func (h *Handler) background(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		fn(ctx)
	}()
}

func guildFromState(s *discordgo.Session, guildID string) *discordgo.Guild {
	if s == nil || s.State == nil || guildID == "" {
		return nil
	}
	g, err := s.State.Guild(guildID)
	if err != nil {
		return nil
	}
	return g
}

// optionUser resolves a user option from the interaction payload.
func optionUser(i *discordgo.InteractionCreate, name string) (*discordgo.User, *discordgo.Member) {
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Name != name {
			continue
		}
		id, _ := opt.Value.(string)
		if id == "" {
			return nil, nil
		}

		user := &discordgo.User{ID: id}
		var member *discordgo.Member
		if data.Resolved != nil {
			if u, ok := data.Resolved.Users[id]; ok {
				user = u
			}
			if m, ok := data.Resolved.Members[id]; ok {
				member = m
				member.User = user
			}
		}
		return user, member
	}
	return nil, nil
}

// displayName mirrors what Discord shows for a member: nickname, global
// name, then username.
func displayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
