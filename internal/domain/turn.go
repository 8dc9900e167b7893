package domain

import "time"

// Role is the speaker role of a projected message as seen by a provider.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single {role, text} entry of a projected context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TurnKind distinguishes user turns from assistant turns in the ledger.
type TurnKind string

const (
	TurnUser      TurnKind = "user"
	TurnAssistant TurnKind = "assistant"
)

// AuditFlags are the four independent suspicious-pattern checks computed
// once per assistant turn, immutable afterward.
type AuditFlags struct {
	InventsFutureResponses bool `json:"invents_future_responses"`
	SelfCitation           bool `json:"self_citation"`
	ConsecutiveResponses   bool `json:"consecutive_responses"`
	QuotesOthers           bool `json:"quotes_others"`
}

// Any reports whether at least one flag was raised.
func (f AuditFlags) Any() bool {
	return f.InventsFutureResponses || f.SelfCitation || f.ConsecutiveResponses || f.QuotesOthers
}

// Turn is the atomic ledger entry. Turns are immutable once appended;
// the ledger assigns Seq on append.
type Turn struct {
	Seq         int         `json:"seq"`
	Kind        TurnKind    `json:"kind"`
	Participant Participant `json:"participant,omitempty"`
	Content     string      `json:"content"`
	Tokens      int         `json:"tokens,omitempty"`
	TimedOut    bool        `json:"timed_out,omitempty"`
	Error       string      `json:"error,omitempty"`
	// ContextSent is the exact message sequence sent to the provider for
	// this turn, preserved for export and diagnostics.
	ContextSent     []Message   `json:"context_sent,omitempty"`
	AuditFlags      *AuditFlags `json:"audit_flags,omitempty"`
	NotationEnabled bool        `json:"notation_enabled"`
	NotationMode    string      `json:"notation_mode,omitempty"`
	Timestamp       time.Time   `json:"timestamp"`
}
