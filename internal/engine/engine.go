package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/agentethos/ethos/internal/credential"
	"github.com/agentethos/ethos/internal/ledger"
	"github.com/agentethos/ethos/internal/store"
)

// Limits bounds the read operations. Zero values fall back to the package
// defaults in New.
type Limits struct {
	// MaxLeaderboard caps leaderboard requests regardless of the
	// caller-requested limit.
	MaxLeaderboard int

	// DefaultLeaderboard applies when the caller requests no limit.
	DefaultLeaderboard int

	// VouchPage applies when a received-vouches request has no limit;
	// requests are capped at MaxVouchPage.
	VouchPage    int
	MaxVouchPage int

	// ProfileVouches is how many recent vouches a public profile includes.
	ProfileVouches int
}

func (l Limits) withDefaults() Limits {
	if l.MaxLeaderboard <= 0 {
		l.MaxLeaderboard = 100
	}
	if l.DefaultLeaderboard <= 0 {
		l.DefaultLeaderboard = 50
	}
	if l.VouchPage <= 0 {
		l.VouchPage = 20
	}
	if l.MaxVouchPage <= 0 {
		l.MaxVouchPage = 100
	}
	if l.ProfileVouches <= 0 {
		l.ProfileVouches = 10
	}
	return l
}

// Engine executes ledger operations against a store.
type Engine struct {
	st     *store.Store
	limits Limits
}

// New creates an engine over the given store.
func New(st *store.Store, limits Limits) *Engine {
	return &Engine{st: st, limits: limits.withDefaults()}
}

// Register creates a new agent and issues its credential. The raw API key
// is returned exactly once, here; only its hash is stored.
//
// Fails with a conflict error if an agent with the same name already exists
// under case-insensitive comparison. The duplicate check is the store's
// uniqueness constraint on the folded name key, so concurrent registrations
// of "Agent" and "agent" cannot both succeed.
func (e *Engine) Register(ctx context.Context, name, description string) (*ledger.Agent, string, error) {
	key := ledger.NameKey(name)
	if key == "" {
		return nil, "", ledger.NewValidationError("agent name must not be empty")
	}
	if utf8.RuneCountInString(name) > ledger.MaxNameLen {
		return nil, "", ledger.NewValidationError("agent name exceeds %d characters", ledger.MaxNameLen)
	}
	if utf8.RuneCountInString(description) > ledger.MaxDescriptionLen {
		return nil, "", ledger.NewValidationError("description exceeds %d characters", ledger.MaxDescriptionLen)
	}

	apiKey := credential.Generate()
	agent := &ledger.Agent{
		Name:        name,
		NameKey:     key,
		Description: description,
		APIKeyHash:  credential.Hash(apiKey),
	}

	if err := e.st.InsertAgent(ctx, agent); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, "", ledger.NewConflictError("agent with name %q already exists", name)
		}
		return nil, "", fmt.Errorf("register agent: %w", err)
	}

	slog.Info("agent registered", "agent", agent.Name, "id", agent.ID)
	return agent, apiKey, nil
}

// Authenticate resolves a raw bearer credential to its agent.
//
// The credential's structural format is checked first; only well-formed
// input is hashed and looked up. Malformed or unmatched credentials fail
// with an unauthorized error, never a lookup error.
func (e *Engine) Authenticate(ctx context.Context, rawKey string) (*ledger.Agent, error) {
	if !credential.IsWellFormed(rawKey) {
		return nil, ledger.NewUnauthorizedError()
	}

	agent, err := e.st.AgentByKeyHash(ctx, credential.Hash(rawKey))
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if agent == nil {
		return nil, ledger.NewUnauthorizedError()
	}
	return agent, nil
}

// GetAgent looks up an agent by name, case-insensitively.
func (e *Engine) GetAgent(ctx context.Context, name string) (*ledger.Agent, error) {
	agent, err := e.st.AgentByNameKey(ctx, ledger.NameKey(name))
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	if agent == nil {
		return nil, ledger.NewNotFoundError("agent %q not found", name)
	}
	return agent, nil
}

// Profile returns an agent's public profile with its most recent received
// vouches.
func (e *Engine) Profile(ctx context.Context, name string) (*ledger.Agent, []ledger.VouchView, error) {
	agent, err := e.GetAgent(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	vouches, err := e.st.ReceivedVouches(ctx, agent.ID, e.limits.ProfileVouches)
	if err != nil {
		return nil, nil, fmt.Errorf("profile vouches: %w", err)
	}
	return agent, vouches, nil
}

// SubmitVouch creates or replaces the vouch from the authenticated agent to
// the named target. A vouch write is not complete until the target's
// reputation reflects it: the upsert and the recompute commit in one store
// transaction.
//
// Replacement preserves the existing row's id, flags count, and original
// created_at; only score, note, and receipt URL change.
func (e *Engine) SubmitVouch(ctx context.Context, from *ledger.Agent, toName string, score int, note, receiptURL string) (*ledger.VouchView, error) {
	// Resolve by name at write time even if the caller cached an id before;
	// names are the primary key agents address each other by.
	target, err := e.st.AgentByNameKey(ctx, ledger.NameKey(toName))
	if err != nil {
		return nil, fmt.Errorf("resolve vouch target: %w", err)
	}
	if target == nil {
		return nil, ledger.NewNotFoundError("agent %q not found", toName)
	}

	if target.ID == from.ID {
		return nil, ledger.NewSelfVouchError()
	}

	if score < ledger.MinScore || score > ledger.MaxScore {
		return nil, ledger.NewValidationError("score must be between %d and %d", ledger.MinScore, ledger.MaxScore)
	}
	if utf8.RuneCountInString(note) > ledger.MaxNoteLen {
		return nil, ledger.NewValidationError("note exceeds %d characters", ledger.MaxNoteLen)
	}
	if utf8.RuneCountInString(receiptURL) > ledger.MaxReceiptURLLen {
		return nil, ledger.NewValidationError("receipt_url exceeds %d characters", ledger.MaxReceiptURLLen)
	}

	vouch, err := e.st.SubmitVouch(ctx, from.ID, target.ID, score, note, receiptURL)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// A concurrent writer for the same pair won; surface it rather
			// than dropping the submission silently.
			return nil, ledger.NewConflictError("concurrent vouch for %q, retry", toName)
		}
		return nil, fmt.Errorf("submit vouch: %w", err)
	}

	slog.Info("vouch submitted",
		"from", from.Name, "to", target.Name, "score", score, "vouch_id", vouch.ID)

	return &ledger.VouchView{
		Vouch:         *vouch,
		FromAgentName: from.Name,
		ToAgentName:   target.Name,
	}, nil
}

// ReceivedVouches lists vouches received by the named agent, newest first,
// each enriched with the source agent's current name. The limit falls back
// to the configured page size and is capped at the configured maximum.
func (e *Engine) ReceivedVouches(ctx context.Context, name string, limit int) ([]ledger.VouchView, error) {
	agent, err := e.GetAgent(ctx, name)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = e.limits.VouchPage
	}
	if limit > e.limits.MaxVouchPage {
		limit = e.limits.MaxVouchPage
	}

	vouches, err := e.st.ReceivedVouches(ctx, agent.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("received vouches: %w", err)
	}
	return vouches, nil
}

// FlagVouch records a moderation flag against a vouch. Each agent may flag
// a given vouch once; the vouch's own endpoints may flag it too. Flags have
// no effect on reputation.
func (e *Engine) FlagVouch(ctx context.Context, flagger *ledger.Agent, vouchID int64, reason string) (*ledger.Flag, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ledger.NewValidationError("flag reason must not be empty")
	}
	if utf8.RuneCountInString(reason) > ledger.MaxReasonLen {
		return nil, ledger.NewValidationError("reason exceeds %d characters", ledger.MaxReasonLen)
	}

	vouch, err := e.st.VouchByID(ctx, vouchID)
	if err != nil {
		return nil, fmt.Errorf("resolve vouch: %w", err)
	}
	if vouch == nil {
		return nil, ledger.NewNotFoundError("vouch %d not found", vouchID)
	}

	flag := &ledger.Flag{
		VouchID:        vouchID,
		FlaggerAgentID: flagger.ID,
		Reason:         reason,
	}
	if err := e.st.InsertFlag(ctx, flag); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ledger.NewConflictError("agent %q has already flagged vouch %d", flagger.Name, vouchID)
		}
		return nil, fmt.Errorf("flag vouch: %w", err)
	}

	slog.Info("vouch flagged", "vouch_id", vouchID, "flagger", flagger.Name)
	return flag, nil
}

// Leaderboard returns agents ordered by reputation descending, ties broken
// by earlier registration. The limit falls back to the configured default
// and is capped at the configured maximum regardless of the request.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]ledger.Agent, error) {
	if limit <= 0 {
		limit = e.limits.DefaultLeaderboard
	}
	if limit > e.limits.MaxLeaderboard {
		limit = e.limits.MaxLeaderboard
	}

	agents, err := e.st.TopAgents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return agents, nil
}
