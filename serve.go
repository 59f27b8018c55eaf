package main

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"smpverify/bot"
	"smpverify/ledger"
	"smpverify/membership"
	"smpverify/oauth"
	"smpverify/verify"
	"smpverify/web"
)

const shutdownTimeout = 10 * time.Second

func botCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "run the Discord bot until interrupted",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}

			b, err := bot.New(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			return b.Run(c.Context)
		},
	}
}

func webCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "serve the OAuth2 verification site until interrupted",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			ctx := c.Context

			l, err := ledger.Open(ctx, cfg.Ledger, logger)
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			engine := verify.NewEngine(nil, l, cfg.Community.Name, logger,
				verify.WithMetrics(verify.NewMetrics(registry)))

			opts := []web.HandlerOption{web.WithGatherer(registry)}

			provider, err := oauth.NewDiscordProvider(cfg.Web.ClientID, cfg.Web.ClientSecret, logger)
			switch {
			case err == nil:
				opts = append(opts, web.WithProvider(provider))
			case errors.Is(err, oauth.ErrMissingCredentials):
				logger.Warn("CLIENT_ID/CLIENT_SECRET not set, verification page disabled")
			default:
				return err
			}

			if cfg.Token != "" {
				// REST only; the web process never opens a gateway connection.
				session, err := discordgo.New("Bot " + cfg.Token)
				if err != nil {
					return err
				}
				opts = append(opts, web.WithBanChecker(
					membership.NewDiscordSource(session, cfg.Community.GuildID, cfg.Membership.LiveMemberLookup)))
			}

			h := web.NewHandler(cfg.Web, cfg.Community, engine, logger, opts...)
			app := web.New(cfg.Web.Port, h, l.Close)

			errCh := make(chan error, 1)
			go func() { errCh <- app.Run() }()
			logger.Info("web server started", "port", cfg.Web.Port, "public_url", cfg.VerificationURL())

			select {
			case err := <-errCh:
				_ = l.Close()
				return err
			case <-ctx.Done():
			}

			logger.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.Info("web server stopped cleanly")
			return nil
		},
	}
}
