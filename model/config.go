package model

import (
	"strings"
	"time"
)

// Config 对应于 config.yaml 的顶级结构
type Config struct {
	Token      string     `mapstructure:"TOKEN"`
	Community  Community  `mapstructure:"community"`
	Commands   Commands   `mapstructure:"commands"`
	Reviews    Reviews    `mapstructure:"reviews"`
	Membership Membership `mapstructure:"membership"`
	Ledger     Ledger     `mapstructure:"ledger"`
	Web        Web        `mapstructure:"web"`
	Logging    Logging    `mapstructure:"logging"`
	Metrics    Metrics    `mapstructure:"metrics"`
}

// Community 对应 "community" 部分, the single guild users are verified against.
type Community struct {
	GuildID string `mapstructure:"guild_id"`
	Name    string `mapstructure:"name"`
}

// Commands 对应 "commands" 部分
type Commands struct {
	Allowguilds []string `mapstructure:"allowguilds"`
	Auth        Auth     `mapstructure:"auth"`
}

// Auth 对应 "auth" 部分
type Auth struct {
	Developers     []string `mapstructure:"developers"`
	AdminsRoles    []string `mapstructure:"admins_roles"`
	AdminRoleNames []string `mapstructure:"admin_role_names"`
}

// Reviews 对应 "reviews" 部分
type Reviews struct {
	ChannelID      string `mapstructure:"channel_id"`
	ChannelKeyword string `mapstructure:"channel_keyword"`
}

// Membership controls how live evidence is fetched from Discord.
type Membership struct {
	LiveMemberLookup bool          `mapstructure:"live_member_lookup"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// Ledger selects and configures the verified-users store.
type Ledger struct {
	Driver              string `mapstructure:"driver"`
	Path                string `mapstructure:"path"`
	JSONPath            string `mapstructure:"json_path"`
	RedisAddr           string `mapstructure:"redis_addr"`
	RedisPassword       string `mapstructure:"redis_password"`
	RedisKey            string `mapstructure:"redis_key"`
	RefreshOnHistorical bool   `mapstructure:"refresh_on_historical"`
}

// Web 对应 "web" 部分, the OAuth2 verification site.
type Web struct {
	Port            string        `mapstructure:"port"`
	PublicURL       string        `mapstructure:"public_url"`
	ReplitDomain    string        `mapstructure:"replit_domain"`
	ClientID        string        `mapstructure:"client_id"`
	ClientSecret    string        `mapstructure:"client_secret"`
	InternalToken   string        `mapstructure:"internal_token"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
}

// Logging 对应 "logging" 部分
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Metrics 对应 "metrics" 部分. An empty address disables the bot's metrics listener.
type Metrics struct {
	Address string `mapstructure:"address"`
}

// VerificationURL is the public base URL of the web surface, as linked from the bot.
func (c *Config) VerificationURL() string {
	url := strings.TrimRight(c.Web.PublicURL, "/")
	if url == "" {
		url = c.Web.ReplitDomain
	}
	if url == "" {
		url = "localhost:" + c.Web.Port
	}
	if !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}
	return url
}

// HasOAuthCredentials reports whether the web surface can build an authorization URL.
func (c *Config) HasOAuthCredentials() bool {
	return c.Web.ClientID != "" && c.Web.ClientSecret != ""
}
