// Package ledger keeps the durable record of every user ever confirmed as a
// current or past community member.
//
// Reads never fail from the caller's point of view: a store error is logged and
// the user is reported absent. Writes made on the verification path are logged
// and swallowed so a storage problem never blocks a verdict.
package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"smpverify/model"
)

// Store is a persistence backend for the ledger.
type Store interface {
	// Get returns nil, nil when the user has no entry.
	Get(ctx context.Context, userID string) (*model.VerifiedUser, error)
	// Upsert creates the entry at time at, or advances last_verified. It must
	// never overwrite first_verified, and an empty username keeps the stored one.
	Upsert(ctx context.Context, userID, username string, at time.Time) error
	// Save writes the record as given.
	Save(ctx context.Context, user model.VerifiedUser) error
	All(ctx context.Context) ([]model.VerifiedUser, error)
}

// Ledger is the process-wide view of the verified users store.
type Ledger struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for new timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over store.
func New(store Store, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: logger.With("component", "ledger"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the user's entry. A read failure is logged and reported as absent.
func (l *Ledger) Get(ctx context.Context, userID string) (*model.VerifiedUser, bool) {
	user, err := l.store.Get(ctx, userID)
	if err != nil {
		l.logger.WarnContext(ctx, "ledger read failed, treating user as unverified",
			"user_id", userID, "error", err)
		return nil, false
	}
	return user, user != nil
}

// Contains reports whether the user has ever been verified.
func (l *Ledger) Contains(ctx context.Context, userID string) bool {
	_, ok := l.Get(ctx, userID)
	return ok
}

// Upsert records a successful verification. Persistence failures are logged
// and not returned.
func (l *Ledger) Upsert(ctx context.Context, userID, username string) {
	if err := l.store.Upsert(ctx, userID, username, l.now()); err != nil {
		l.logger.ErrorContext(ctx, "ledger write failed",
			"user_id", userID, "error", err)
		return
	}
	l.logger.DebugContext(ctx, "ledger entry updated", "user_id", userID)
}

// All lists every entry.
func (l *Ledger) All(ctx context.Context) ([]model.VerifiedUser, error) {
	return l.store.All(ctx)
}

// Import merges entries from another ledger. For users already present the
// earliest first_verified and the latest last_verified win, and a non-empty
// username replaces the stored one. It returns the number of entries written.
func (l *Ledger) Import(ctx context.Context, users []model.VerifiedUser) (int, error) {
	written := 0
	for _, user := range users {
		if user.UserID == "" {
			continue
		}
		existing, err := l.store.Get(ctx, user.UserID)
		if err != nil {
			return written, fmt.Errorf("import %s: %w", user.UserID, err)
		}
		merged := mergeRecords(existing, user)
		if err := l.store.Save(ctx, merged); err != nil {
			return written, fmt.Errorf("import %s: %w", user.UserID, err)
		}
		written++
	}
	l.logger.InfoContext(ctx, "ledger import finished", "written", written)
	return written, nil
}

// Close releases the underlying store when it holds resources.
func (l *Ledger) Close() error {
	if c, ok := l.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func mergeRecords(existing *model.VerifiedUser, incoming model.VerifiedUser) model.VerifiedUser {
	if existing == nil {
		return incoming
	}
	merged := *existing
	if !incoming.FirstVerified.IsZero() && incoming.FirstVerified.Before(merged.FirstVerified) {
		merged.FirstVerified = incoming.FirstVerified
	}
	if incoming.LastVerified.After(merged.LastVerified) {
		merged.LastVerified = incoming.LastVerified
	}
	if incoming.Username != "" {
		merged.Username = incoming.Username
	}
	return merged
}
