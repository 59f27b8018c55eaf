package oauth

import "slices"

// Identity is what the identity provider tells us about the person who
// authorized the app.
type Identity struct {
	UserID   string
	Username string
	GuildIDs []string
}

// InGuild reports whether the user currently belongs to guildID.
func (i *Identity) InGuild(guildID string) bool {
	return i != nil && slices.Contains(i.GuildIDs, guildID)
}
