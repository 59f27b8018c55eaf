// Package membership answers roster and ban questions about the target
// community through the Discord API.
package membership

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"smpverify/verify"
)

// ErrCommunityUnreachable means the bot cannot see the target guild at all.
var ErrCommunityUnreachable = errors.New("target community unreachable")

// guildAPI is the part of *discordgo.Session used for live lookups.
type guildAPI interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildBan(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.GuildBan, error)
}

// DiscordSource implements verify.MembershipSource for one guild.
//
// Membership is answered from the gateway state first. The state roster is
// kept current by GUILD_MEMBER_* events, so it lags reality only by event
// delivery; a miss may still mean the member was never cached (REST-only
// sessions, members not chunked yet). With liveLookup set, a miss is confirmed
// with an authoritative REST call.
type DiscordSource struct {
	api        guildAPI
	state      *discordgo.State
	guildID    string
	liveLookup bool
}

// NewDiscordSource creates a source backed by session.
func NewDiscordSource(session *discordgo.Session, guildID string, liveLookup bool) *DiscordSource {
	return &DiscordSource{
		api:        session,
		state:      session.State,
		guildID:    guildID,
		liveLookup: liveLookup,
	}
}

func (d *DiscordSource) IsReachable(ctx context.Context) error {
	if d.state != nil {
		if _, err := d.state.Guild(d.guildID); err == nil {
			return nil
		}
	}

	if _, err := d.api.Guild(d.guildID, discordgo.WithContext(ctx)); err != nil {
		if status := restStatus(err); status == http.StatusForbidden || status == http.StatusNotFound {
			return fmt.Errorf("%w: guild %s: %v", ErrCommunityUnreachable, d.guildID, err)
		}
		return fmt.Errorf("fetch guild %s: %w", d.guildID, err)
	}
	return nil
}

func (d *DiscordSource) IsMember(ctx context.Context, userID string) (bool, error) {
	if d.state != nil {
		if m, err := d.state.Member(d.guildID, userID); err == nil && m != nil {
			return true, nil
		}
	}
	if !d.liveLookup {
		return false, nil
	}

	if _, err := d.api.GuildMember(d.guildID, userID, discordgo.WithContext(ctx)); err != nil {
		if isNotFound(err, discordgo.ErrCodeUnknownMember) {
			return false, nil
		}
		return false, fmt.Errorf("fetch member %s: %w", userID, err)
	}
	return true, nil
}

func (d *DiscordSource) GetBan(ctx context.Context, userID string) verify.BanResult {
	ban, err := d.api.GuildBan(d.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err, discordgo.ErrCodeUnknownBan) {
			return verify.BanResult{Status: verify.NotBanned}
		}
		return verify.BanResult{Status: verify.BanLookupFailed, Err: fmt.Errorf("fetch ban %s: %w", userID, err)}
	}
	return verify.BanResult{Status: verify.Banned, Reason: ban.Reason}
}

// isNotFound reports whether err is the given Discord "unknown entity" error.
func isNotFound(err error, code int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == code {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func restStatus(err error) int {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode
	}
	return 0
}

var _ verify.MembershipSource = (*DiscordSource)(nil)
