// Package id issues identifiers for ledger rows and payment instructions.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Entry returns a random v4 UUID as 32 lowercase hex characters, the width of
// the audit_entries.entry_id column.
func Entry() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Payment returns a canonical hyphenated v4 UUID.
func Payment() string { return uuid.NewString() }
