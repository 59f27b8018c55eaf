package model

import "time"

// PendingReview holds the state of a /rev command between the slash command
// and the modal submission.
type PendingReview struct {
	TargetUserID string
	AdminUserID  string
	CreatedAt    time.Time
}
