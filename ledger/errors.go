package ledger

import "errors"

var (
	// ErrCorruptLedger marks a ledger document that exists but cannot be parsed.
	ErrCorruptLedger = errors.New("ledger is corrupt")
	// ErrUnknownDriver is returned by Open for an unsupported ledger.driver.
	ErrUnknownDriver = errors.New("unknown ledger driver")
)
