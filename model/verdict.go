package model

// Source names the signal that produced a verdict.
type Source string

const (
	SourceNone       Source = "none"
	SourceCurrent    Source = "current"
	SourceBanned     Source = "banned"
	SourceHistorical Source = "historical"
)

// Evidence holds the live facts gathered for one user at decision time. It is
// never cached beyond a single request.
type Evidence struct {
	IsCurrentMember bool
	IsBanned        bool
	BanReason       string
	// Degraded is set when at least one live lookup could not be completed.
	Degraded bool
}

// Verdict is the outcome of one verification decision.
type Verdict struct {
	Verified bool
	Status   string
	Source   Source
	Evidence Evidence
	// Record is the ledger entry for the user, when one exists.
	Record *VerifiedUser
}
