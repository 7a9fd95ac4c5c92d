package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agentethos/ethos/internal/ledger"
)

// InsertAgent inserts a new agent row and fills in the generated id.
// A duplicate name_key returns ErrConflict (the uniqueness constraint is
// the duplicate-name check; there is no prior SELECT to race against).
//
// CreatedAt is stamped with the current UTC time unless already set
// (tests pin timestamps this way).
func (s *Store) InsertAgent(ctx context.Context, a *ledger.Agent) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (name, name_key, description, api_key_hash, reputation, is_claimed, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`,
		a.Name,
		a.NameKey,
		a.Description,
		a.APIKeyHash,
		a.IsClaimed,
		a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert agent %q: %w", a.Name, ErrConflict)
		}
		return fmt.Errorf("insert agent: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert agent: last insert id: %w", err)
	}
	a.ID = id
	a.Reputation = 0
	return nil
}

// AgentByNameKey returns the agent with the given folded name key, or
// (nil, nil) if absent. Absence is a normal outcome, not an error; the
// caller decides what it means.
func (s *Store) AgentByNameKey(ctx context.Context, nameKey string) (*ledger.Agent, error) {
	return s.agentByQuery(ctx, `WHERE name_key = ?`, nameKey)
}

// AgentByID returns the agent with the given id, or (nil, nil) if absent.
func (s *Store) AgentByID(ctx context.Context, id int64) (*ledger.Agent, error) {
	return s.agentByQuery(ctx, `WHERE id = ?`, id)
}

// AgentByKeyHash returns the agent whose credential hashes to the given
// digest, or (nil, nil) if absent.
func (s *Store) AgentByKeyHash(ctx context.Context, keyHash string) (*ledger.Agent, error) {
	return s.agentByQuery(ctx, `WHERE api_key_hash = ?`, keyHash)
}

func (s *Store) agentByQuery(ctx context.Context, where string, arg any) (*ledger.Agent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, name_key, description, api_key_hash, reputation, is_claimed, created_at
		FROM agents `+where, arg)

	var a ledger.Agent
	err := row.Scan(&a.ID, &a.Name, &a.NameKey, &a.Description, &a.APIKeyHash, &a.Reputation, &a.IsClaimed, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query agent: %w", err)
	}
	return &a, nil
}

// SetReputation overwrites an agent's cached reputation. Idempotent; used
// by the reconciliation recompute, not by the vouch-write path (which
// recomputes inside its own transaction).
func (s *Store) SetReputation(ctx context.Context, agentID, value int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE agents SET reputation = ? WHERE id = ?`, value, agentID); err != nil {
		return fmt.Errorf("set reputation: %w", err)
	}
	return nil
}

// TopAgents returns up to limit agents ordered by reputation descending.
// Ties break by created_at ascending (earlier-registered agent first), then
// id ascending so the ordering is total and stable across calls.
func (s *Store) TopAgents(ctx context.Context, limit int) ([]ledger.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, name_key, description, api_key_hash, reputation, is_claimed, created_at
		FROM agents
		ORDER BY reputation DESC, created_at ASC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top agents: %w", err)
	}
	defer rows.Close()

	var agents []ledger.Agent
	for rows.Next() {
		var a ledger.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.NameKey, &a.Description, &a.APIKeyHash, &a.Reputation, &a.IsClaimed, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}

	// Return empty slice instead of nil
	if agents == nil {
		agents = []ledger.Agent{}
	}
	return agents, nil
}
