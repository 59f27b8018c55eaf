package verify

import (
	"context"
	"log/slog"

	"smpverify/model"
)

// Ledger is the slice of the verification ledger the engine needs.
type Ledger interface {
	Get(ctx context.Context, userID string) (*model.VerifiedUser, bool)
	Upsert(ctx context.Context, userID, username string)
}

// Engine combines live evidence and the ledger into one verdict.
type Engine struct {
	collector           *Collector
	ledger              Ledger
	community           string
	refreshOnHistorical bool
	logger              *slog.Logger
	metrics             *Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRefreshOnHistorical makes ledger-only matches on the chat path advance
// last_verified as well. Off by default: only live positives refresh the ledger.
func WithRefreshOnHistorical(refresh bool) EngineOption {
	return func(e *Engine) { e.refreshOnHistorical = refresh }
}

// WithMetrics records verdict counters.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine for the named community.
func NewEngine(collector *Collector, ledger Ledger, community string, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		collector: collector,
		ledger:    ledger,
		community: community,
		logger:    logger.With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide runs the full check used by the chat surface. Precedence, first match
// wins: current member, banned, in the ledger, never seen. A live positive
// (current or banned) is written back to the ledger.
func (e *Engine) Decide(ctx context.Context, userID, username string) model.Verdict {
	var ev model.Evidence
	if e.collector != nil {
		ev = e.collector.Collect(ctx, userID)
	} else {
		ev.Degraded = true
	}

	record, historical := e.ledger.Get(ctx, userID)
	v := model.Verdict{Evidence: ev, Record: record}

	switch {
	case ev.IsCurrentMember:
		v.Verified, v.Status, v.Source = true, CurrentLabel(e.community), model.SourceCurrent
	case ev.IsBanned:
		v.Verified, v.Status, v.Source = true, BannedLabel(e.community, ev.BanReason), model.SourceBanned
	case historical:
		v.Verified, v.Status, v.Source = true, HistoricalLabel, model.SourceHistorical
	default:
		v.Verified, v.Status, v.Source = false, NeverLabel(e.community), model.SourceNone
	}

	switch v.Source {
	case model.SourceCurrent, model.SourceBanned:
		e.persist(ctx, userID, username)
	case model.SourceHistorical:
		if e.refreshOnHistorical {
			e.persist(ctx, userID, username)
		}
	}

	e.metrics.verdict(SurfaceChat, v.Source)
	e.logger.InfoContext(ctx, "verification decided",
		"surface", SurfaceChat,
		"user_id", userID,
		"verified", v.Verified,
		"source", v.Source,
		"degraded", ev.Degraded)
	return v
}

// DecideOAuth is the restricted check used by the web callback, where only the
// identity provider's guild list and the ledger are available. Ban status
// cannot be seen on this path, so a banned user who left and was never
// recorded is reported as never verified. Both positive outcomes refresh the
// ledger.
func (e *Engine) DecideOAuth(ctx context.Context, userID, username string, inCommunity bool) model.Verdict {
	record, historical := e.ledger.Get(ctx, userID)
	v := model.Verdict{
		Evidence: model.Evidence{IsCurrentMember: inCommunity},
		Record:   record,
	}

	switch {
	case inCommunity:
		v.Verified, v.Status, v.Source = true, CurrentLabel(e.community), model.SourceCurrent
	case historical:
		v.Verified, v.Status, v.Source = true, HistoricalLabel, model.SourceHistorical
	default:
		v.Verified, v.Status, v.Source = false, NeverLabel(e.community), model.SourceNone
	}

	if v.Verified {
		e.persist(ctx, userID, username)
	}

	e.metrics.verdict(SurfaceWeb, v.Source)
	e.logger.InfoContext(ctx, "verification decided",
		"surface", SurfaceWeb,
		"user_id", userID,
		"username", username,
		"verified", v.Verified,
		"source", v.Source)
	return v
}

// persist writes the ledger only while the caller is still waiting.
func (e *Engine) persist(ctx context.Context, userID, username string) {
	if err := ctx.Err(); err != nil {
		e.logger.WarnContext(ctx, "request abandoned, skipping ledger write",
			"user_id", userID, "error", err)
		return
	}
	e.ledger.Upsert(ctx, userID, username)
}
