package conversation

import (
	"fmt"
	"strings"

	"agora/internal/domain"
)

// attributionFormat is the mandatory framing for a foreign assistant
// turn. The exact format (upper-cased name, colon, newline) is a stable,
// parseable marker that both the auditor and the models' self/other
// disambiguation depend on.
const attributionFormat = "Previous response from %s:\n%s"

// Project rewrites the shared history into the message sequence one
// target participant should receive. User turns stay user-role verbatim;
// the target's own turns become assistant-role verbatim; every other
// participant's turns become user-role observations wrapped in the
// attribution header. Pure function of its inputs.
func Project(turns []domain.Turn, target domain.Participant) []domain.Message {
	context := make([]domain.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Kind {
		case domain.TurnUser:
			context = append(context, domain.Message{Role: domain.RoleUser, Content: t.Content})
		case domain.TurnAssistant:
			if t.Participant == target {
				context = append(context, domain.Message{Role: domain.RoleAssistant, Content: t.Content})
			} else {
				context = append(context, domain.Message{
					Role:    domain.RoleUser,
					Content: fmt.Sprintf(attributionFormat, strings.ToUpper(string(t.Participant)), t.Content),
				})
			}
		}
	}
	return context
}
