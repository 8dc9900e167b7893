package conversation

import (
	"math/rand"
	"time"

	"agora/internal/domain"
)

// maxRollAttempts bounds the random draws before the deterministic
// fallback kicks in.
const maxRollAttempts = 100

// Roller produces a permutation of the active participants for each new
// round, avoiding an exact repeat of the previous permutation. It holds
// exactly the last permutation returned; Reset clears that memory.
type Roller struct {
	rng  *rand.Rand
	last []domain.Participant
}

// NewRoller creates a roller. A nil rng gets a time-seeded source;
// tests inject a seeded one.
func NewRoller(rng *rand.Rand) *Roller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Roller{rng: rng}
}

// Roll returns a permutation of active that differs from the previous
// permutation. With one participant or none there is nothing to
// randomize and the input comes back unchanged. After maxRollAttempts
// identical draws it falls back deterministically to the reverse of the
// previous permutation.
func (r *Roller) Roll(active []domain.Participant) []domain.Participant {
	if len(active) <= 1 {
		out := make([]domain.Participant, len(active))
		copy(out, active)
		return out
	}

	for i := 0; i < maxRollAttempts; i++ {
		candidate := make([]domain.Participant, len(active))
		copy(candidate, active)
		r.rng.Shuffle(len(candidate), func(a, b int) {
			candidate[a], candidate[b] = candidate[b], candidate[a]
		})
		if !equalOrder(candidate, r.last) {
			r.last = candidate
			return candidate
		}
	}

	// Fallback: reverse the previous permutation, or keep the given
	// order when there is no previous one.
	var fallback []domain.Participant
	if r.last != nil {
		fallback = make([]domain.Participant, len(r.last))
		for i, p := range r.last {
			fallback[len(r.last)-1-i] = p
		}
	} else {
		fallback = make([]domain.Participant, len(active))
		copy(fallback, active)
	}
	r.last = fallback
	return fallback
}

// Last returns the previous permutation, or nil before the first roll.
func (r *Roller) Last() []domain.Participant {
	if r.last == nil {
		return nil
	}
	out := make([]domain.Participant, len(r.last))
	copy(out, r.last)
	return out
}

// Reset clears the anti-repeat memory so the next roll is unconstrained.
func (r *Roller) Reset() { r.last = nil }

// equalOrder compares by sequence equality only: a changed active set
// trivially differs from the old permutation.
func equalOrder(a, b []domain.Participant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
