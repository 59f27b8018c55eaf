package ledger

import (
	"context"
	"log/slog"
	"time"

	"smpverify/model"
)

// FakeStore provides a programmable stub for the Store interface.
type FakeStore struct {
	trace []string

	GetFunc    func(ctx context.Context, userID string) (*model.VerifiedUser, error)
	UpsertFunc func(ctx context.Context, userID, username string, at time.Time) error
	SaveFunc   func(ctx context.Context, user model.VerifiedUser) error
	AllFunc    func(ctx context.Context) ([]model.VerifiedUser, error)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeStore) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStore) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStore) Get(ctx context.Context, userID string) (*model.VerifiedUser, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeStore) Upsert(ctx context.Context, userID, username string, at time.Time) error {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, userID, username, at)
	}
	return nil
}

func (f *FakeStore) Save(ctx context.Context, user model.VerifiedUser) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, user)
	}
	return nil
}

func (f *FakeStore) All(ctx context.Context) ([]model.VerifiedUser, error) {
	f.record("All")
	if f.AllFunc != nil {
		return f.AllFunc(ctx)
	}
	return nil, nil
}

var _ Store = (*FakeStore)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}
