package bot

import (
	"github.com/bwmarrin/discordgo"
)

// intents the bot needs: guild state plus the member list for roster checks.
const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

func (b *Bot) registerEventHandlers() {
	s := b.session
	s.AddHandler(b.router.OnInteractionCreate)
	s.AddHandler(b.onReady)
	s.AddHandler(b.onGuildCreate)

	// 设置必要的intents
	s.Identify.Intents = intents
	s.State.TrackMembers = true
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("bot is ready", "user", r.User.String(), "guilds", len(r.Guilds))
}

// onGuildCreate fills the member cache of the target community so roster
// checks can be answered from state.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.ID != b.cfg.Community.GuildID {
		return
	}
	b.logger.Info("target community available", "guild_id", g.ID, "name", g.Name, "members", g.MemberCount)
	if err := s.RequestGuildMembers(g.ID, "", 0, "", false); err != nil {
		b.logger.Warn("request guild members failed", "guild_id", g.ID, "error", err)
	}
}
