// Package oauth implements the Discord OAuth2 authorization code flow used
// by the web verification page.
package oauth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"
)

var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

var Scopes = []string{"identify", "guilds"}

// maxGuilds is the largest page /users/@me/guilds returns.
const maxGuilds = 200

// FetchFunc resolves an access token into an Identity.
type FetchFunc func(ctx context.Context, token *oauth2.Token) (*Identity, error)

// DiscordProvider exchanges authorization codes for Discord identities.
type DiscordProvider struct {
	config oauth2.Config
	fetch  FetchFunc
	logger *slog.Logger
}

type Option func(*DiscordProvider)

// WithEndpoint overrides the Discord OAuth2 endpoints.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *DiscordProvider) { p.config.Endpoint = endpoint }
}

// WithFetch replaces the identity lookup made after the token exchange.
func WithFetch(fetch FetchFunc) Option {
	return func(p *DiscordProvider) { p.fetch = fetch }
}

func NewDiscordProvider(clientID, clientSecret string, logger *slog.Logger, opts ...Option) (*DiscordProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	p := &DiscordProvider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     Endpoint,
			Scopes:       Scopes,
		},
		fetch:  FetchDiscordIdentity,
		logger: logger.With("component", "oauth"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// AuthCodeURL builds the authorization URL for redirectURL.
func (p *DiscordProvider) AuthCodeURL(state, redirectURL string) string {
	cfg := p.config
	cfg.RedirectURL = redirectURL
	return cfg.AuthCodeURL(state)
}

// Exchange trades code for a token and looks up who it belongs to.
func (p *DiscordProvider) Exchange(ctx context.Context, code, redirectURL string) (*Identity, error) {
	cfg := p.config
	cfg.RedirectURL = redirectURL

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	identity, err := p.fetch(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityFetch, err)
	}

	p.logger.DebugContext(ctx, "discord identity resolved",
		"user_id", identity.UserID,
		"guilds", len(identity.GuildIDs))
	return identity, nil
}

// FetchDiscordIdentity reads /users/@me and /users/@me/guilds with a bearer
// token.
func FetchDiscordIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	s, err := discordgo.New("Bearer " + token.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	guilds, err := s.UserGuilds(maxGuilds, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get guilds: %w", err)
	}

	identity := &Identity{
		UserID:   user.ID,
		Username: user.Username,
		GuildIDs: make([]string, 0, len(guilds)),
	}
	for _, g := range guilds {
		identity.GuildIDs = append(identity.GuildIDs, g.ID)
	}
	return identity, nil
}
