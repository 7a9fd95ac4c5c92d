// Package store provides SQLite-backed persistence for the reputation
// ledger: agents, vouches, and flags.
//
// # Invariants carried by the schema
//
//   - UNIQUE(agents.name_key): case-insensitive agent-name uniqueness.
//     The key is derived in Go (ledger.NameKey) and stored alongside the
//     display name, so registration races resolve at the constraint, not
//     in application logic.
//   - UNIQUE(vouches.from_agent_id, to_agent_id): one vouch per ordered
//     pair. Concurrent submissions for the same pair serialize into a
//     single row, last committed wins.
//   - UNIQUE(flags.vouch_id, flagger_agent_id): one flag per (vouch,
//     flagger) pair. Duplicate flags fail at the constraint.
//
// # Atomicity
//
// SubmitVouch applies "upsert vouch + recompute target reputation" in one
// transaction. A crash or a losing concurrent writer never leaves a vouch
// committed with a stale reputation, nor a reputation update without its
// vouch. InsertFlag applies "insert flag + increment flags_count" the same
// way.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Unique-constraint violations are mapped to ErrConflict before they leave
// this package; callers translate that to their own conflict taxonomy.
package store
