package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for persisted timestamps.
// Fixed width keeps lexical and chronological order identical.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// legacyLayouts are accepted on read. The naive forms come from ledgers written
// without a zone and are interpreted as local time.
var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// VerifiedUser is one ledger entry: a user confirmed at least once as a current
// or past community member.
type VerifiedUser struct {
	UserID        string
	Username      string
	FirstVerified time.Time
	LastVerified  time.Time
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses any timestamp the ledger may contain.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// verifiedUserJSON is the persisted layout. The user id is the map key, so it
// is not repeated inside the record.
type verifiedUserJSON struct {
	Username      *string `json:"username"`
	FirstVerified string  `json:"first_verified"`
	LastVerified  string  `json:"last_verified"`
}

func (u VerifiedUser) MarshalJSON() ([]byte, error) {
	rec := verifiedUserJSON{
		FirstVerified: FormatTime(u.FirstVerified),
		LastVerified:  FormatTime(u.LastVerified),
	}
	if u.Username != "" {
		name := u.Username
		rec.Username = &name
	}
	return json.Marshal(rec)
}

func (u *VerifiedUser) UnmarshalJSON(data []byte) error {
	var rec verifiedUserJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	first, err := ParseTime(rec.FirstVerified)
	if err != nil {
		return fmt.Errorf("first_verified: %w", err)
	}
	last, err := ParseTime(rec.LastVerified)
	if err != nil {
		return fmt.Errorf("last_verified: %w", err)
	}
	u.FirstVerified = first
	u.LastVerified = last
	u.Username = ""
	if rec.Username != nil {
		u.Username = *rec.Username
	}
	return nil
}

// LedgerFile is the whole-ledger JSON document, keyed by user id.
type LedgerFile map[string]VerifiedUser

// UnmarshalJSON fills UserID from the map keys.
func (f *LedgerFile) UnmarshalJSON(data []byte) error {
	raw := map[string]VerifiedUser{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(LedgerFile, len(raw))
	for id, rec := range raw {
		rec.UserID = id
		out[id] = rec
	}
	*f = out
	return nil
}
