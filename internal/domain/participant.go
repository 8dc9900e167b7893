package domain

// Participant identifies one of the language-model providers that can
// contribute a turn to the conversation. The set is closed: credentials
// decide which members are active, never which members exist.
type Participant string

const (
	ParticipantClaude Participant = "claude"
	ParticipantGPT    Participant = "gpt"
	ParticipantGemini Participant = "gemini"
	ParticipantGrok   Participant = "grok"
)

// AllParticipants returns the closed participant vocabulary in a stable order.
// The auditor matches response text against this full set, not just the
// active subset, so an inactive model being quoted is still detected.
func AllParticipants() []Participant {
	return []Participant{ParticipantClaude, ParticipantGPT, ParticipantGemini, ParticipantGrok}
}

// Known reports whether p is a member of the closed participant set.
func (p Participant) Known() bool {
	switch p {
	case ParticipantClaude, ParticipantGPT, ParticipantGemini, ParticipantGrok:
		return true
	}
	return false
}
