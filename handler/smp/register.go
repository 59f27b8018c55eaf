// Package smp implements the DonutSMP verification slash commands.
package smp

import (
	"context"
	"log/slog"
	"time"

	"smpverify/command/def"
	"smpverify/handler"
	"smpverify/model"
	"smpverify/utils"
)

const (
	verifyButtonID = "verify_button"
	reviewModalID  = "review_modal"

	defaultTimeout = 10 * time.Second
)

// Decider produces the chat-surface verdict.
type Decider interface {
	Decide(ctx context.Context, userID, username string) model.Verdict
}

// Ledger is what /add_historical needs from the verification ledger.
type Ledger interface {
	Contains(ctx context.Context, userID string) bool
	Upsert(ctx context.Context, userID, username string)
}

// Handler holds the dependencies shared by every command.
type Handler struct {
	engine          Decider
	ledger          Ledger
	auth            model.Auth
	community       string
	verificationURL string
	reviews         *utils.ReviewChannel
	pending         *utils.PendingReviews
	timeout         time.Duration
	logger          *slog.Logger
}

type Config struct {
	Auth            model.Auth
	Community       string
	VerificationURL string
	// Timeout bounds the work done after an interaction is deferred.
	Timeout time.Duration
}

func New(cfg Config, engine Decider, ledger Ledger, reviews *utils.ReviewChannel, pending *utils.PendingReviews, logger *slog.Logger) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Handler{
		engine:          engine,
		ledger:          ledger,
		auth:            cfg.Auth,
		community:       cfg.Community,
		verificationURL: cfg.VerificationURL,
		reviews:         reviews,
		pending:         pending,
		timeout:         cfg.Timeout,
		logger:          logger.With("component", "smp"),
	}
}

// Register registers all handlers for the smp package.
func (h *Handler) Register(r *handler.Router) {
	r.AddCommandHandler(def.VerifyCommand.Name, h.verifyCommandHandler)
	r.AddComponentHandler(verifyButtonID, h.verifyButtonHandler)

	// 评价流程: /rev 打开 modal, 提交后发到 vouches 频道
	r.AddCommandHandler(def.ReviewCommand.Name, h.reviewCommandHandler)
	r.AddModalHandler(reviewModalID, h.reviewModalHandler)

	r.AddCommandHandler(def.SMPCommand.Name, h.lookupCommandHandler)
	r.AddCommandHandler(def.AddHistoricalCommand.Name, h.addHistoricalCommandHandler)
	r.AddCommandHandler(def.SetVouchesChannelCommand.Name, h.setVouchesChannelCommandHandler)
}
