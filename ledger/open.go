package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"smpverify/db"
	"smpverify/model"
)

// Open builds the Ledger for the configured driver.
func Open(ctx context.Context, cfg model.Ledger, logger *slog.Logger, opts ...Option) (*Ledger, error) {
	var store Store

	switch cfg.Driver {
	case "", "sqlite":
		conn, err := db.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		store = db.NewVerifiedUserStore(conn)
	case "json":
		store = NewJSONStore(cfg.JSONPath, logger)
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		store = NewRedisStore(client, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	logger.InfoContext(ctx, "ledger ready", "driver", driverName(cfg.Driver))
	return New(store, logger, opts...), nil
}

func driverName(driver string) string {
	if driver == "" {
		return "sqlite"
	}
	return driver
}
