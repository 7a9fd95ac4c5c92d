// Package engine implements the reputation consistency engine: the
// operations that create and replace vouches, keep cached reputation equal
// to the underlying vouch set, prevent duplicate flags and self-vouching,
// and define the leaderboard ordering.
//
// The engine validates inputs and enforces the ledger rules; the store
// carries the uniqueness constraints and transactional guarantees that make
// those rules hold under concurrent writers. Every error leaving the engine
// is a *ledger.Error so callers can map it deterministically (HTTP handlers
// map codes to statuses, the CLI maps them to exit codes).
package engine
