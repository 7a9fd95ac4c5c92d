package ledger

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NameKey derives the canonical lookup key for an agent name.
//
// Names are the primary human-facing key and all name addressing is
// case-insensitive, so the key is the NFC-normalized, Unicode case-folded
// form of the trimmed name. "Agent" and "agent" (and "AGENT") produce the
// same key; the store enforces uniqueness on this key, which makes
// duplicate-name detection race-safe rather than check-then-insert.
func NameKey(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}
