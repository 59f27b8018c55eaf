// Package bot runs the Discord gateway session and the slash commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smpverify/command"
	"smpverify/config"
	"smpverify/handler"
	"smpverify/handler/smp"
	"smpverify/ledger"
	"smpverify/membership"
	"smpverify/model"
	"smpverify/utils"
	"smpverify/verify"
)

const janitorInterval = time.Minute

// Bot wires the session, the verification engine and the command handlers.
type Bot struct {
	cfg      *model.Config
	session  *discordgo.Session
	ledger   *ledger.Ledger
	router   *handler.Router
	pending  *utils.PendingReviews
	registry *prometheus.Registry
	logger   *slog.Logger
}

// New 创建机器人. It does not connect yet.
func New(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*Bot, error) {
	if err := config.ValidateBot(cfg); err != nil {
		return nil, err
	}

	// 使用提供的机器人令牌创建一个新的 Discord 会话
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := verify.NewMetrics(registry)

	l, err := ledger.Open(ctx, cfg.Ledger, logger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	source := membership.NewDiscordSource(dg, cfg.Community.GuildID, cfg.Membership.LiveMemberLookup)
	collector := verify.NewCollector(source, cfg.Membership.RequestTimeout, logger, metrics)
	engine := verify.NewEngine(collector, l, cfg.Community.Name, logger,
		verify.WithRefreshOnHistorical(cfg.Ledger.RefreshOnHistorical),
		verify.WithMetrics(metrics))

	b := &Bot{
		cfg:      cfg,
		session:  dg,
		ledger:   l,
		router:   handler.NewRouter(),
		pending:  utils.NewPendingReviews(utils.DefaultReviewTTL),
		registry: registry,
		logger:   logger.With("component", "bot"),
	}

	smp.New(smp.Config{
		Auth:            cfg.Commands.Auth,
		Community:       cfg.Community.Name,
		VerificationURL: cfg.VerificationURL(),
		Timeout:         handlerTimeout(collector),
	}, engine, l, utils.NewReviewChannel(cfg.Reviews.ChannelID, cfg.Reviews.ChannelKeyword), b.pending, logger).
		Register(b.router)

	b.registerEventHandlers()
	return b, nil
}

// handlerTimeout bounds deferred command work: one evidence collection plus
// the ledger write and the response edit.
func handlerTimeout(c *verify.Collector) time.Duration {
	return 2 * c.Timeout()
}

// Run connects to Discord and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	defer b.ledger.Close()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway connection: %w", err)
	}
	defer b.session.Close()

	if err := b.registerCommands(); err != nil {
		return err
	}

	go b.pending.Run(ctx, janitorInterval)

	if addr := b.cfg.Metrics.Address; addr != "" {
		srv := b.metricsServer(addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				b.logger.Error("metrics listener stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	b.logger.Info("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()
	b.logger.Info("shutting down")
	return nil
}

func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	for _, guildID := range commandScopes(b.cfg.Commands.Allowguilds) {
		for _, cmd := range command.AllCommands {
			if _, err := b.session.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
				return fmt.Errorf("cannot create '%v' command: %w", cmd.Name, err)
			}
		}
		b.logger.Info("commands registered", "guild_id", guildID, "count", len(command.AllCommands))
	}
	return nil
}

func (b *Bot) metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// commandScopes lists where slash commands are created. No configured guild
// means global commands.
func commandScopes(allowguilds []string) []string {
	if len(allowguilds) == 0 {
		return []string{""}
	}
	return allowguilds
}
