package ledger

import "time"

// Field limits enforced at the service boundary. Score and note limits are
// part of the vouch contract; the others mirror the registration contract.
const (
	MinScore = -5
	MaxScore = 5

	MaxNameLen        = 100
	MaxDescriptionLen = 500
	MaxNoteLen        = 280
	MaxReasonLen      = 280
	MaxReceiptURLLen  = 500
)

// Agent is a registered identity in the ledger.
//
// Reputation is a cached derivation: the sum of scores of all vouches where
// this agent is the target. Only the vouch-write transaction (and the
// reconciliation recompute) may set it.
type Agent struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// NameKey is the case-folded, NFC-normalized form of Name. It carries
	// the case-insensitive uniqueness constraint in the store and is the
	// key for all name lookups.
	NameKey string `json:"-"`

	// APIKeyHash is the SHA-256 hex digest of the agent's credential.
	// The raw credential is returned once at registration and never stored.
	APIKeyHash string `json:"-"`

	Reputation int64     `json:"reputation"`
	IsClaimed  bool      `json:"is_claimed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vouch is a directed, scored endorsement from one agent to another.
// At most one vouch exists per ordered (from, to) pair.
type Vouch struct {
	ID          int64     `json:"id"`
	FromAgentID int64     `json:"from_agent_id"`
	ToAgentID   int64     `json:"to_agent_id"`
	Score       int       `json:"score"`
	Note        string    `json:"note"`
	ReceiptURL  string    `json:"receipt_url,omitempty"`
	FlagsCount  int64     `json:"flags_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// VouchView is a vouch enriched with both endpoint names, resolved at read
// time. Names are the human-facing key, so a renamed agent shows its current
// name on historical vouches.
type VouchView struct {
	Vouch
	FromAgentName string `json:"from_agent_name"`
	ToAgentName   string `json:"to_agent_name"`
}

// Flag is a moderation marker attached to a vouch. At most one flag exists
// per (vouch, flagger) pair. Any agent may flag, including the vouch's own
// endpoints. Flags are never deleted or mutated.
type Flag struct {
	ID             int64     `json:"id"`
	VouchID        int64     `json:"vouch_id"`
	FlaggerAgentID int64     `json:"flagger_agent_id"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}
