package export

import "agora/internal/domain"

// ParticipantStats aggregates one participant's turns.
type ParticipantStats struct {
	Turns         int `json:"turns"`
	Tokens        int `json:"tokens"`
	Errors        int `json:"errors"`
	Flagged       int `json:"flagged"`
	NotationTurns int `json:"notation_turns"`
}

// Report is the read-only diagnostic aggregation over a ledger snapshot.
type Report struct {
	TotalTurns     int                                     `json:"total_turns"`
	UserTurns      int                                     `json:"user_turns"`
	AssistantTurns int                                     `json:"assistant_turns"`
	NotationTurns  int                                     `json:"notation_turns"`
	FlaggedTurns   int                                     `json:"flagged_turns"`
	FlagCounts     map[string]int                          `json:"flag_counts"`
	ByParticipant  map[domain.Participant]ParticipantStats `json:"by_participant"`
}

// Diagnose walks the turns once and counts rounds by type, audit flags
// raised, and per-participant token totals and error counts.
func Diagnose(turns []domain.Turn) *Report {
	report := &Report{
		TotalTurns: len(turns),
		FlagCounts: map[string]int{
			"invents_future_responses": 0,
			"self_citation":            0,
			"consecutive_responses":    0,
			"quotes_others":            0,
		},
		ByParticipant: make(map[domain.Participant]ParticipantStats),
	}

	for _, t := range turns {
		if t.NotationEnabled {
			report.NotationTurns++
		}

		switch t.Kind {
		case domain.TurnUser:
			report.UserTurns++
		case domain.TurnAssistant:
			report.AssistantTurns++

			stats := report.ByParticipant[t.Participant]
			stats.Turns++
			stats.Tokens += t.Tokens
			if t.Error != "" {
				stats.Errors++
			}
			if t.NotationEnabled {
				stats.NotationTurns++
			}

			if t.AuditFlags != nil {
				if t.AuditFlags.Any() {
					report.FlaggedTurns++
					stats.Flagged++
				}
				if t.AuditFlags.InventsFutureResponses {
					report.FlagCounts["invents_future_responses"]++
				}
				if t.AuditFlags.SelfCitation {
					report.FlagCounts["self_citation"]++
				}
				if t.AuditFlags.ConsecutiveResponses {
					report.FlagCounts["consecutive_responses"]++
				}
				if t.AuditFlags.QuotesOthers {
					report.FlagCounts["quotes_others"]++
				}
			}

			report.ByParticipant[t.Participant] = stats
		}
	}

	return report
}
