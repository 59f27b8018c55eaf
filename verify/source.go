// Package verify decides whether a Discord user is, or has ever been, a member
// of the target community.
package verify

import "context"

// MembershipSource answers live questions about the target community.
type MembershipSource interface {
	// IsReachable returns an error when the community cannot be queried at all,
	// for example because the bot is not in it or lacks access.
	IsReachable(ctx context.Context) error
	// IsMember reports whether the user is on the current roster.
	IsMember(ctx context.Context, userID string) (bool, error)
	// GetBan looks the user up in the ban list.
	GetBan(ctx context.Context, userID string) BanResult
}

// BanStatus distinguishes a valid negative from a failed lookup.
type BanStatus int

const (
	BanLookupFailed BanStatus = iota
	NotBanned
	Banned
)

func (s BanStatus) String() string {
	switch s {
	case NotBanned:
		return "not_banned"
	case Banned:
		return "banned"
	default:
		return "lookup_failed"
	}
}

// BanResult is the outcome of a ban list lookup. Reason is only set for Banned
// and Err only for BanLookupFailed.
type BanResult struct {
	Status BanStatus
	Reason string
	Err    error
}
