package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStore_ReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified_users.json")
	legacy := `{
  "852038293850898442": {
    "username": "notch",
    "first_verified": "2024-02-01T10:00:00.123456",
    "last_verified": "2024-03-01T10:00:00.123456"
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store := NewJSONStore(path, discardLogger())
	user, err := store.Get(context.Background(), "852038293850898442")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "notch", user.Username)
	assert.Equal(t, 2024, user.FirstVerified.Year())
}

func TestJSONStore_CorruptFileReadsAsEmptyThroughLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified_users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := New(NewJSONStore(path, discardLogger()), discardLogger())
	assert.False(t, l.Contains(context.Background(), "1"))
}

func TestJSONStore_WriteAfterCorruptionMovesFileAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verified_users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewJSONStore(path, discardLogger())
	require.NoError(t, store.Upsert(context.Background(), "1", "a", time.Now()))

	user, err := store.Get(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, user)

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestJSONStore_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(filepath.Join(dir, "verified_users.json"), discardLogger())

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Upsert(context.Background(), "1", "", time.Now()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"verified_users.json", "verified_users.json.lock"}, names)
}

func TestJSONStore_TwoHandlesDoNotLoseEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified_users.json")
	bot := NewJSONStore(path, discardLogger())
	web := NewJSONStore(path, discardLogger())
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	const perHandle = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*perHandle)
	for h, store := range []*JSONStore{bot, web} {
		for i := 0; i < perHandle; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.Upsert(context.Background(), strconv.Itoa(h*perHandle+i), "", at)
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := NewJSONStore(path, discardLogger()).All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2*perHandle)
}
