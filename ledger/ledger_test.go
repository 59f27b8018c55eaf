package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smpverify/db"
	"smpverify/model"
)

func TestLedger_GetTreatsReadErrorAsAbsent(t *testing.T) {
	store := &FakeStore{
		GetFunc: func(context.Context, string) (*model.VerifiedUser, error) {
			return nil, errors.New("disk gone")
		},
	}
	l := New(store, discardLogger())

	user, ok := l.Get(context.Background(), "1")
	assert.Nil(t, user)
	assert.False(t, ok)
	assert.False(t, l.Contains(context.Background(), "1"))
}

func TestLedger_UpsertSwallowsWriteError(t *testing.T) {
	store := &FakeStore{
		UpsertFunc: func(context.Context, string, string, time.Time) error {
			return errors.New("read-only file system")
		},
	}
	l := New(store, discardLogger())

	assert.NotPanics(t, func() { l.Upsert(context.Background(), "1", "a") })
	assert.Equal(t, []string{"Upsert"}, store.Trace())
}

func TestLedger_UpsertUsesClock(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	var got time.Time
	store := &FakeStore{
		UpsertFunc: func(_ context.Context, _, _ string, ts time.Time) error {
			got = ts
			return nil
		},
	}
	l := New(store, discardLogger(), WithClock(func() time.Time { return at }))

	l.Upsert(context.Background(), "1", "")
	assert.True(t, got.Equal(at))
}

func TestLedger_ImportMergesExisting(t *testing.T) {
	early := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var saved []model.VerifiedUser
	store := &FakeStore{
		GetFunc: func(_ context.Context, userID string) (*model.VerifiedUser, error) {
			if userID == "1" {
				return &model.VerifiedUser{UserID: "1", Username: "old", FirstVerified: mid, LastVerified: late}, nil
			}
			return nil, nil
		},
		SaveFunc: func(_ context.Context, user model.VerifiedUser) error {
			saved = append(saved, user)
			return nil
		},
	}
	l := New(store, discardLogger())

	n, err := l.Import(context.Background(), []model.VerifiedUser{
		{UserID: "1", FirstVerified: early, LastVerified: mid},
		{UserID: "2", Username: "new", FirstVerified: mid, LastVerified: mid},
		{UserID: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, saved, 2)

	assert.True(t, saved[0].FirstVerified.Equal(early))
	assert.True(t, saved[0].LastVerified.Equal(late))
	assert.Equal(t, "old", saved[0].Username)
	assert.Equal(t, "new", saved[1].Username)
}

func TestLedger_ImportStopsOnSaveError(t *testing.T) {
	store := &FakeStore{
		SaveFunc: func(context.Context, model.VerifiedUser) error { return errors.New("boom") },
	}
	l := New(store, discardLogger())

	n, err := l.Import(context.Background(), []model.VerifiedUser{{UserID: "1"}, {UserID: "2"}})
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{"Get", "Save"}, store.Trace())
}

// backends returns a fresh instance of every real Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Store{
		"sqlite": db.NewVerifiedUserStore(conn),
		"json":   NewJSONStore(filepath.Join(t.TempDir(), "verified_users.json"), discardLogger()),
		"redis":  NewRedisStore(client, ""),
	}
}

func TestLedger_RepeatedUpsertKeepsFirstAndAdvancesLast(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := New(store, discardLogger(), WithClock(stepClock(start, time.Hour)))

			const calls = 5
			for i := 0; i < calls; i++ {
				l.Upsert(ctx, "852", "")
			}

			user, ok := l.Get(ctx, "852")
			require.True(t, ok)
			assert.True(t, user.FirstVerified.Equal(start), "first=%v", user.FirstVerified)
			assert.True(t, user.LastVerified.Equal(start.Add((calls-1)*time.Hour)), "last=%v", user.LastVerified)
		})
	}
}

func TestLedger_UpsertUsernameRules(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := New(store, discardLogger())

			l.Upsert(ctx, "9", "first-name")
			l.Upsert(ctx, "9", "")
			user, ok := l.Get(ctx, "9")
			require.True(t, ok)
			assert.Equal(t, "first-name", user.Username)

			l.Upsert(ctx, "9", "second-name")
			user, _ = l.Get(ctx, "9")
			assert.Equal(t, "second-name", user.Username)
		})
	}
}

func TestLedger_AllListsSortedEntries(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := New(store, discardLogger())

			l.Upsert(ctx, "3", "c")
			l.Upsert(ctx, "1", "a")
			l.Upsert(ctx, "2", "")

			all, err := l.All(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"1", "2", "3"}, []string{all[0].UserID, all[1].UserID, all[2].UserID})
		})
	}
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	l, err := Open(ctx, model.Ledger{Driver: "sqlite", Path: filepath.Join(dir, "a", "ledger.db")}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(ctx, model.Ledger{Driver: "json", JSONPath: filepath.Join(dir, "verified_users.json")}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	mr := miniredis.RunT(t)
	l, err = Open(ctx, model.Ledger{Driver: "redis", RedisAddr: mr.Addr()}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = Open(ctx, model.Ledger{Driver: "etcd"}, discardLogger())
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

// sharedBackends returns, per real backend, two independent handles on the same
// storage, the way the bot and web processes see it.
func sharedBackends(t *testing.T) map[string][2]Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	var sqlite [2]Store
	for i := range sqlite {
		conn, err := db.Open(dbPath)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		sqlite[i] = db.NewVerifiedUserStore(conn)
	}

	mr := miniredis.RunT(t)
	var redis [2]Store
	for i := range redis {
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		redis[i] = NewRedisStore(client, "")
	}

	jsonPath := filepath.Join(t.TempDir(), "verified_users.json")
	return map[string][2]Store{
		"sqlite": sqlite,
		"redis":  redis,
		"json":   {NewJSONStore(jsonPath, discardLogger()), NewJSONStore(jsonPath, discardLogger())},
	}
}

func TestStores_ConcurrentUpsertsAcrossHandles(t *testing.T) {
	const writers = 20
	first := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	for name, handles := range sharedBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, handles[0].Upsert(ctx, "1", "seed", first))

			var wg sync.WaitGroup
			errs := make(chan error, 4*writers)
			for h, store := range handles {
				for i := 0; i < writers; i++ {
					n := h*writers + i + 1
					at := first.Add(time.Duration(n) * time.Second)
					wg.Add(2)
					go func() {
						defer wg.Done()
						errs <- store.Upsert(ctx, "1", "name-"+strconv.Itoa(n), at)
					}()
					go func() {
						defer wg.Done()
						errs <- store.Upsert(ctx, strconv.Itoa(1000+n), "", at)
					}()
				}
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			shared, err := handles[1].Get(ctx, "1")
			require.NoError(t, err)
			require.NotNil(t, shared)
			assert.True(t, shared.FirstVerified.Equal(first), "first_verified moved to %s", shared.FirstVerified)
			assert.True(t, shared.LastVerified.After(first))
			assert.True(t, strings.HasPrefix(shared.Username, "name-"), "username %q", shared.Username)

			all, err := handles[0].All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1+2*writers)
		})
	}
}
