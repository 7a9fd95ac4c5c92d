package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agentethos/ethos/internal/ledger"
)

// SubmitVouch inserts or replaces the vouch for the ordered pair
// (fromID, toID) and recomputes the target's reputation, all in one
// transaction. The submission is not committed until the target's
// reputation reflects it.
//
// Replace semantics: ON CONFLICT on the (from, to) uniqueness constraint
// updates score, note, and receipt_url in place, preserving the row's id,
// flags_count, and original created_at. Two concurrent submissions for the
// same pair serialize into that single row, last committed wins; no
// duplicate row can exist.
//
// Reputation is recomputed from scratch (sum of received scores) rather
// than adjusted incrementally: the cached value stays self-healing against
// any drift, at the cost of an O(vouches-received) scan per write.
func (s *Store) SubmitVouch(ctx context.Context, fromID, toID int64, score int, note, receiptURL string) (*ledger.Vouch, error) {
	var v ledger.Vouch
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vouches (from_agent_id, to_agent_id, score, note, receipt_url, flags_count, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?)
			ON CONFLICT(from_agent_id, to_agent_id) DO UPDATE SET
				score = excluded.score,
				note = excluded.note,
				receipt_url = excluded.receipt_url
		`,
			fromID, toID, score, note, receiptURL, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("upsert vouch: %w", err)
		}

		row := tx.QueryRowContext(ctx, `
			SELECT id, from_agent_id, to_agent_id, score, note, receipt_url, flags_count, created_at
			FROM vouches
			WHERE from_agent_id = ? AND to_agent_id = ?
		`, fromID, toID)
		if err := scanVouch(row, &v); err != nil {
			return fmt.Errorf("read back vouch: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE agents
			SET reputation = (SELECT COALESCE(SUM(score), 0) FROM vouches WHERE to_agent_id = ?)
			WHERE id = ?
		`, toID, toID)
		if err != nil {
			return fmt.Errorf("recompute reputation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit vouch: %w", err)
	}
	return &v, nil
}

// VouchByID returns the vouch with the given id, or (nil, nil) if absent.
func (s *Store) VouchByID(ctx context.Context, id int64) (*ledger.Vouch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, from_agent_id, to_agent_id, score, note, receipt_url, flags_count, created_at
		FROM vouches
		WHERE id = ?
	`, id)

	var v ledger.Vouch
	err := scanVouch(row, &v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query vouch: %w", err)
	}
	return &v, nil
}

// ReceivedVouches returns up to limit vouches received by the given agent,
// newest first. Endpoint names are resolved at read time via JOIN, so a
// renamed agent shows its current name on historical vouches.
func (s *Store) ReceivedVouches(ctx context.Context, toID int64, limit int) ([]ledger.VouchView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.from_agent_id, v.to_agent_id, v.score, v.note, v.receipt_url,
		       v.flags_count, v.created_at, f.name, t.name
		FROM vouches v
		JOIN agents f ON f.id = v.from_agent_id
		JOIN agents t ON t.id = v.to_agent_id
		WHERE v.to_agent_id = ?
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT ?
	`, toID, limit)
	if err != nil {
		return nil, fmt.Errorf("query received vouches: %w", err)
	}
	defer rows.Close()

	var views []ledger.VouchView
	for rows.Next() {
		var vv ledger.VouchView
		if err := rows.Scan(
			&vv.ID, &vv.FromAgentID, &vv.ToAgentID, &vv.Score, &vv.Note, &vv.ReceiptURL,
			&vv.FlagsCount, &vv.CreatedAt, &vv.FromAgentName, &vv.ToAgentName,
		); err != nil {
			return nil, fmt.Errorf("scan vouch: %w", err)
		}
		views = append(views, vv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vouches: %w", err)
	}

	if views == nil {
		views = []ledger.VouchView{}
	}
	return views, nil
}

// RecomputeReputation recomputes and persists the given agent's reputation
// as the sum of scores of vouches it has received (0 if none), returning
// the value. Idempotent; running it twice yields the same result. The
// vouch-write path already does this inside its own transaction, so this
// standalone form exists for reconciliation and tests.
func (s *Store) RecomputeReputation(ctx context.Context, agentID int64) (int64, error) {
	var total int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(score), 0) FROM vouches WHERE to_agent_id = ?
		`, agentID).Scan(&total)
		if err != nil {
			return fmt.Errorf("sum scores: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE agents SET reputation = ? WHERE id = ?`, total, agentID); err != nil {
			return fmt.Errorf("write reputation: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recompute reputation: %w", err)
	}
	return total, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVouch(row scanner, v *ledger.Vouch) error {
	return row.Scan(
		&v.ID, &v.FromAgentID, &v.ToAgentID, &v.Score, &v.Note, &v.ReceiptURL,
		&v.FlagsCount, &v.CreatedAt,
	)
}
