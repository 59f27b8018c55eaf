// Package config loads config.yaml and the deployment environment into a
// model.Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"smpverify/model"
)

// ErrMissingToken means the bot cannot start without BOT_TOKEN.
var ErrMissingToken = errors.New("BOT_TOKEN environment variable not set")

// DefaultPath is where the CLI looks for the config file.
const DefaultPath = "config.yaml"

// envBindings maps config keys to the environment variables deployments set.
var envBindings = map[string][]string{
	"token":                 {"BOT_TOKEN"},
	"web.client_id":         {"CLIENT_ID"},
	"web.client_secret":     {"CLIENT_SECRET"},
	"web.port":              {"PORT"},
	"web.replit_domain":     {"REPLIT_DEV_DOMAIN"},
	"ledger.redis_addr":     {"REDIS_ADDR"},
	"ledger.redis_password": {"REDIS_PASSWORD"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("token", "")

	v.SetDefault("community.guild_id", "852038293850898442")
	v.SetDefault("community.name", "DonutSMP")

	v.SetDefault("commands.allowguilds", []string{})
	v.SetDefault("commands.auth.developers", []string{})
	v.SetDefault("commands.auth.admins_roles", []string{})
	v.SetDefault("commands.auth.admin_role_names", []string{"admin", "administrator", "mod", "moderator", "owner"})

	v.SetDefault("reviews.channel_id", "")
	v.SetDefault("reviews.channel_keyword", "vouches")

	v.SetDefault("membership.live_member_lookup", true)
	v.SetDefault("membership.request_timeout", 5*time.Second)

	v.SetDefault("ledger.driver", "sqlite")
	v.SetDefault("ledger.path", "data/verified_users.db")
	v.SetDefault("ledger.json_path", "verified_users.json")
	v.SetDefault("ledger.redis_addr", "localhost:6379")
	v.SetDefault("ledger.redis_password", "")
	v.SetDefault("ledger.redis_key", "smpverify:verified_users")
	v.SetDefault("ledger.refresh_on_historical", false)

	v.SetDefault("web.port", "5000")
	v.SetDefault("web.public_url", "")
	v.SetDefault("web.replit_domain", "")
	v.SetDefault("web.client_id", "")
	v.SetDefault("web.client_secret", "")
	v.SetDefault("web.internal_token", "")
	v.SetDefault("web.upstream_timeout", 10*time.Second)
	v.SetDefault("web.rate_limit", 1.0)
	v.SetDefault("web.rate_burst", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.address", "")
}

// LoadConfig reads path (a missing file is fine) and applies environment
// overrides. Any key can also be set as SECTION_KEY, e.g. LEDGER_DRIVER.
func LoadConfig(path string) (*model.Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ValidateBot checks what the chat bot needs before connecting.
func ValidateBot(cfg *model.Config) error {
	if cfg.Token == "" {
		return ErrMissingToken
	}
	return nil
}
