package verify

import (
	"context"
	"log/slog"
	"time"

	"smpverify/model"
)

// DefaultRequestTimeout bounds one evidence collection.
const DefaultRequestTimeout = 5 * time.Second

// Collector gathers live membership evidence for one user.
type Collector struct {
	source  MembershipSource
	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// NewCollector creates a Collector. A zero timeout uses DefaultRequestTimeout;
// metrics may be nil.
func NewCollector(source MembershipSource, timeout time.Duration, logger *slog.Logger, metrics *Metrics) *Collector {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Collector{
		source:  source,
		timeout: timeout,
		logger:  logger.With("component", "collector"),
		metrics: metrics,
	}
}

// Timeout is the effective bound on one Collect call.
func (c *Collector) Timeout() time.Duration {
	return c.timeout
}

// Collect never fails. When the source cannot answer, the affected signal is
// reported negative, Degraded is set and the failure goes to the log.
func (c *Collector) Collect(ctx context.Context, userID string) model.Evidence {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var ev model.Evidence

	if err := c.source.IsReachable(ctx); err != nil {
		c.logger.WarnContext(ctx, "membership source unreachable, running degraded",
			"user_id", userID, "error", err)
		ev.Degraded = true
		c.metrics.degraded()
		return ev
	}

	member, err := c.source.IsMember(ctx, userID)
	if err != nil {
		c.logger.WarnContext(ctx, "member lookup failed",
			"user_id", userID, "error", err)
		ev.Degraded = true
	} else {
		ev.IsCurrentMember = member
	}

	ban := c.source.GetBan(ctx, userID)
	switch ban.Status {
	case Banned:
		ev.IsBanned = true
		ev.BanReason = ban.Reason
	case NotBanned:
	default:
		c.logger.WarnContext(ctx, "ban lookup failed",
			"user_id", userID, "error", ban.Err)
		ev.Degraded = true
	}

	if ev.Degraded {
		c.metrics.degraded()
	}
	return ev
}
