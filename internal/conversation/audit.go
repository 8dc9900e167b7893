package conversation

import (
	"strings"

	"agora/internal/domain"
)

// Audit scans a completed response for suspicious references to other
// participants, relative to the round's order and the speaker's position
// in it. All checks are case-insensitive substring matches over the
// closed participant vocabulary. Pure function of its inputs.
func Audit(text string, speaker domain.Participant, order []domain.Participant, position int) domain.AuditFlags {
	var flags domain.AuditFlags
	lower := strings.ToLower(text)

	// References to participants that have not spoken yet this round.
	if position < len(order)-1 {
		for _, future := range order[position+1:] {
			if mentions(lower, future) {
				flags.InventsFutureResponses = true
				break
			}
		}
	}

	// Third-person self-reference via the bracketed marker.
	if strings.Contains(lower, bracketMarker(speaker)) {
		flags.SelfCitation = true
	}

	// References to any other participant, regardless of position.
	for _, other := range domain.AllParticipants() {
		if other == speaker {
			continue
		}
		if mentions(lower, other) {
			flags.QuotesOthers = true
			break
		}
	}

	// ConsecutiveResponses is reserved: no detection rule is specified,
	// the flag stays false.

	return flags
}

// mentions matches either marker form: "[name]" or "name said".
func mentions(lower string, p domain.Participant) bool {
	return strings.Contains(lower, bracketMarker(p)) ||
		strings.Contains(lower, string(p)+" said")
}

func bracketMarker(p domain.Participant) string {
	return "[" + string(p) + "]"
}
