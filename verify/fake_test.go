package verify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"smpverify/model"
)

// FakeSource provides a programmable stub for MembershipSource.
type FakeSource struct {
	mu    sync.Mutex
	trace []string

	IsReachableFunc func(ctx context.Context) error
	IsMemberFunc    func(ctx context.Context, userID string) (bool, error)
	GetBanFunc      func(ctx context.Context, userID string) BanResult
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeSource) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeSource) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeSource) IsReachable(ctx context.Context) error {
	f.record("IsReachable")
	if f.IsReachableFunc != nil {
		return f.IsReachableFunc(ctx)
	}
	return nil
}

func (f *FakeSource) IsMember(ctx context.Context, userID string) (bool, error) {
	f.record("IsMember")
	if f.IsMemberFunc != nil {
		return f.IsMemberFunc(ctx, userID)
	}
	return false, nil
}

func (f *FakeSource) GetBan(ctx context.Context, userID string) BanResult {
	f.record("GetBan")
	if f.GetBanFunc != nil {
		return f.GetBanFunc(ctx, userID)
	}
	return BanResult{Status: NotBanned}
}

var _ MembershipSource = (*FakeSource)(nil)

// memLedger is an in-memory Ledger following the store upsert rules.
type memLedger struct {
	mu      sync.Mutex
	users   map[string]model.VerifiedUser
	now     func() time.Time
	upserts int
}

func newMemLedger(now func() time.Time) *memLedger {
	return &memLedger{users: map[string]model.VerifiedUser{}, now: now}
}

func (l *memLedger) Get(_ context.Context, userID string) (*model.VerifiedUser, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	user, ok := l.users[userID]
	if !ok {
		return nil, false
	}
	return &user, true
}

func (l *memLedger) Upsert(_ context.Context, userID, username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.upserts++
	at := l.now()
	user, ok := l.users[userID]
	if !ok {
		user = model.VerifiedUser{UserID: userID, FirstVerified: at}
	}
	user.LastVerified = at
	if username != "" {
		user.Username = username
	}
	l.users[userID] = user
}

func (l *memLedger) seed(user model.VerifiedUser) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users[user.UserID] = user
}

var _ Ledger = (*memLedger)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
