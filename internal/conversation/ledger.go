// Package conversation implements the core of the multi-model
// conversation: the append-only turn ledger, the anti-repeat order roll,
// the per-participant context projection, the response auditor, and the
// strictly sequential orchestration loop that ties them together.
package conversation

import "agora/internal/domain"

// Ledger is the ordered history of turns for one conversation. Sequence
// numbers are strictly increasing and contiguous from 1. The ledger is
// owned by a Conversation, which serializes all mutation; Ledger itself
// is not safe for concurrent use.
type Ledger struct {
	turns []domain.Turn
}

// Append assigns the next sequence number and appends the turn.
func (l *Ledger) Append(t domain.Turn) domain.Turn {
	t.Seq = len(l.turns) + 1
	l.turns = append(l.turns, t)
	return t
}

// Turns returns a copy of the full history.
func (l *Ledger) Turns() []domain.Turn {
	out := make([]domain.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Ledger) Len() int { return len(l.turns) }

// reset drops the whole history. No partial rollback exists.
func (l *Ledger) reset() { l.turns = nil }
