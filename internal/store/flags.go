package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentethos/ethos/internal/ledger"
)

// InsertFlag inserts a flag row and increments the vouch's flags_count by
// exactly 1, in one transaction. A duplicate (vouch, flagger) pair returns
// ErrConflict from the uniqueness constraint, which keeps duplicate-flag
// detection race-safe rather than check-then-act; the count is only ever
// incremented alongside a successfully inserted row.
//
// The vouch must exist (foreign key constraint). Flags are never deleted
// or mutated.
func (s *Store) InsertFlag(ctx context.Context, f *ledger.Flag) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO flags (vouch_id, flagger_agent_id, reason, created_at)
			VALUES (?, ?, ?, ?)
		`, f.VouchID, f.FlaggerAgentID, f.Reason, f.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("flag vouch %d by agent %d: %w", f.VouchID, f.FlaggerAgentID, ErrConflict)
			}
			return fmt.Errorf("insert flag: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert flag: last insert id: %w", err)
		}
		f.ID = id

		if _, err := tx.ExecContext(ctx,
			`UPDATE vouches SET flags_count = flags_count + 1 WHERE id = ?`, f.VouchID); err != nil {
			return fmt.Errorf("increment flags_count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

// FlagCount returns the number of flag rows referencing the given vouch.
// Used by tests to assert the flags_count cache stays consistent.
func (s *Store) FlagCount(ctx context.Context, vouchID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flags WHERE vouch_id = ?`, vouchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count flags: %w", err)
	}
	return n, nil
}
