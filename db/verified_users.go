package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smpverify/model"
)

// VerifiedUserStore persists the verification ledger in the verified_users table.
type VerifiedUserStore struct {
	db *sql.DB
}

// NewVerifiedUserStore wraps an open database.
func NewVerifiedUserStore(conn *sql.DB) *VerifiedUserStore {
	return &VerifiedUserStore{db: conn}
}

// Get retrieves a user's ledger entry. It returns nil, nil when the user has
// never been verified.
func (s *VerifiedUserStore) Get(ctx context.Context, userID string) (*model.VerifiedUser, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT user_id, username, first_verified, last_verified FROM verified_users WHERE user_id = ?", userID)

	user, err := scanVerifiedUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get verified user %s: %w", userID, err)
	}
	return user, nil
}

// Upsert creates the entry with first_verified = last_verified = at, or advances
// last_verified on an existing one. first_verified is never touched on conflict
// and an empty username keeps the stored one.
func (s *VerifiedUserStore) Upsert(ctx context.Context, userID, username string, at time.Time) error {
	ts := model.FormatTime(at)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verified_users (user_id, username, first_verified, last_verified)
		VALUES (?, NULLIF(?, ''), ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			last_verified = excluded.last_verified,
			username = COALESCE(excluded.username, verified_users.username)`,
		userID, username, ts, ts)
	if err != nil {
		return fmt.Errorf("upsert verified user %s: %w", userID, err)
	}
	return nil
}

// Save writes the record as given, replacing any existing entry.
func (s *VerifiedUserStore) Save(ctx context.Context, user model.VerifiedUser) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO verified_users (user_id, username, first_verified, last_verified) VALUES (?, NULLIF(?, ''), ?, ?)",
		user.UserID, user.Username, model.FormatTime(user.FirstVerified), model.FormatTime(user.LastVerified))
	if err != nil {
		return fmt.Errorf("save verified user %s: %w", user.UserID, err)
	}
	return nil
}

// All returns every ledger entry ordered by user id.
func (s *VerifiedUserStore) All(ctx context.Context) ([]model.VerifiedUser, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, username, first_verified, last_verified FROM verified_users ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list verified users: %w", err)
	}
	defer rows.Close()

	var users []model.VerifiedUser
	for rows.Next() {
		user, err := scanVerifiedUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list verified users: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list verified users: %w", err)
	}
	return users, nil
}

// Close closes the underlying database.
func (s *VerifiedUserStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerifiedUser(row scanner) (*model.VerifiedUser, error) {
	var (
		user        model.VerifiedUser
		username    sql.NullString
		first, last string
	)
	if err := row.Scan(&user.UserID, &username, &first, &last); err != nil {
		return nil, err
	}

	var err error
	if user.FirstVerified, err = model.ParseTime(first); err != nil {
		return nil, err
	}
	if user.LastVerified, err = model.ParseTime(last); err != nil {
		return nil, err
	}
	user.Username = username.String
	return &user, nil
}
