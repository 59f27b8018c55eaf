package verify

import "fmt"

const (
	// HistoricalLabel is the status for users known only from the ledger.
	HistoricalLabel = "Previously verified (historical)"
	// NoBanReason replaces an empty ban reason.
	NoBanReason = "No reason provided"
)

// CurrentLabel is the status for users on the current roster.
func CurrentLabel(community string) string {
	return "Currently in " + community
}

// BannedLabel is the status for users on the ban list.
func BannedLabel(community, reason string) string {
	if reason == "" {
		reason = NoBanReason
	}
	return fmt.Sprintf("Banned from %s: %s", community, reason)
}

// NeverLabel is the only status of an unverified user.
func NeverLabel(community string) string {
	return "Never been in " + community
}
