package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"smpverify/model"
)

// JSONStore keeps the ledger in a single JSON document keyed by user id, the
// legacy verified_users.json layout. Every mutation rewrites the whole
// file through a temp file and rename, so readers see either the old or the new
// document and never a partial one.
//
// Reads and read-modify-writes hold a lock on a sibling "<path>.lock" file
// (shared and exclusive respectively), so the bot and web processes can share
// one ledger without losing each other's entries. The mutex serializes
// goroutines of this process around the single lock handle.
type JSONStore struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	mu     sync.Mutex
}

// NewJSONStore creates a store backed by path. The file is created on the first write.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	return &JSONStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.With("component", "ledger.json"),
	}
}

// withLock runs fn holding the process mutex and the ledger file lock.
func (s *JSONStore) withLock(exclusive bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	acquire := s.lock.RLock
	if exclusive {
		acquire = s.lock.Lock
	}
	if err := acquire(); err != nil {
		return fmt.Errorf("lock ledger %s: %w", s.path, err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Error("unlock ledger", "path", s.path, "error", err)
		}
	}()

	return fn()
}

func (s *JSONStore) Get(_ context.Context, userID string) (*model.VerifiedUser, error) {
	var found *model.VerifiedUser
	err := s.withLock(false, func() error {
		users, err := s.load()
		if err != nil {
			return err
		}
		if user, ok := users[userID]; ok {
			found = &user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *JSONStore) Upsert(_ context.Context, userID, username string, at time.Time) error {
	return s.withLock(true, func() error {
		users, err := s.loadForWrite()
		if err != nil {
			return err
		}

		user, ok := users[userID]
		if !ok {
			user = model.VerifiedUser{UserID: userID, FirstVerified: at}
		}
		user.LastVerified = at
		if username != "" {
			user.Username = username
		}
		users[userID] = user

		return s.write(users)
	})
}

func (s *JSONStore) Save(_ context.Context, user model.VerifiedUser) error {
	return s.withLock(true, func() error {
		users, err := s.loadForWrite()
		if err != nil {
			return err
		}
		users[user.UserID] = user
		return s.write(users)
	})
}

func (s *JSONStore) All(_ context.Context) ([]model.VerifiedUser, error) {
	var out []model.VerifiedUser
	err := s.withLock(false, func() error {
		users, err := s.load()
		if err != nil {
			return err
		}
		out = make([]model.VerifiedUser, 0, len(users))
		for _, user := range users {
			out = append(out, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// load reads the whole document. A missing file is an empty ledger.
func (s *JSONStore) load() (model.LedgerFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.LedgerFile{}, nil
		}
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return model.LedgerFile{}, nil
	}

	var users model.LedgerFile
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, s.path, err)
	}
	return users, nil
}

// loadForWrite is load for mutations: an unparsable document is moved aside
// and replaced by an empty ledger instead of blocking every future write.
func (s *JSONStore) loadForWrite() (model.LedgerFile, error) {
	users, err := s.load()
	if err == nil {
		return users, nil
	}

	if !errors.Is(err, ErrCorruptLedger) {
		return nil, err
	}

	aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if renameErr := os.Rename(s.path, aside); renameErr != nil {
		return nil, fmt.Errorf("move corrupt ledger aside: %w", renameErr)
	}
	s.logger.Error("ledger file unreadable, starting from an empty ledger",
		"path", s.path, "moved_to", aside, "error", err)
	return model.LedgerFile{}, nil
}

func (s *JSONStore) write(users model.LedgerFile) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".verified_users-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
