// Package ledger defines the domain model for the agent reputation ledger:
// agents, vouches, flags, the error taxonomy shared by every operation, and
// the name-key derivation that makes agent names case-insensitive.
//
// # Core Rules
//
// Reputation is derived, never authored: an agent's reputation always equals
// the sum of scores of the vouches it has received. The value is cached on
// the agent row and recomputed from scratch inside the same transaction as
// every vouch write, so a caller that just wrote a vouch can never observe a
// stale reputation.
//
// A vouch is unique per ordered (from, to) pair. Submitting a second vouch
// for the same pair replaces the existing row's score, note, and receipt URL
// in place; the row keeps its id, flags count, and original created_at.
//
// A flag is unique per (vouch, flagger) pair. Flags are moderation signals
// only; they never feed into reputation.
//
// All uniqueness rules are carried by store-level constraints, not
// check-then-insert application logic, so they hold under concurrent
// writers.
package ledger
