package provider

import (
	"fmt"

	"agora/internal/domain"
)

// ErrorKind classifies an adapter failure.
type ErrorKind int

const (
	// KindMissingCredential means the provider was never attempted
	// because no API key is configured.
	KindMissingCredential ErrorKind = iota
	// KindEmptyPayload means a defensive decode check still failed after
	// the retry; CallError.Failure names the check.
	KindEmptyPayload
	// KindTransport means the network call itself failed or the provider
	// raised an error; TimedOut tags deadline conditions.
	KindTransport
	// KindUnknownParticipant means an order entry matched no adapter.
	// Defensive: cannot occur when the roll is fed only known identifiers.
	KindUnknownParticipant
)

// DecodeFailure names one defensive check of the response walk, in the
// order the checks run.
type DecodeFailure int

const (
	FailNullResponse DecodeFailure = iota
	FailMissingCandidates
	FailEmptyCandidates
	FailMissingContent
	FailEmptyText
)

func (f DecodeFailure) String() string {
	switch f {
	case FailNullResponse:
		return "null response"
	case FailMissingCandidates:
		return "missing candidate list"
	case FailEmptyCandidates:
		return "empty candidate list"
	case FailMissingContent:
		return "missing content"
	case FailEmptyText:
		return "empty text"
	}
	return "unknown decode failure"
}

// DecodeError is returned by an adapter's decode step when a payload is
// syntactically valid but semantically empty. It is the only retryable
// error class.
type DecodeError struct {
	Failure DecodeFailure
}

func (e *DecodeError) Error() string { return e.Failure.String() }

// CallError is the tagged error value carried on a failed Result.
type CallError struct {
	Kind     ErrorKind
	Failure  DecodeFailure // set when Kind == KindEmptyPayload
	TimedOut bool
	Message  string
}

func (e *CallError) Error() string { return e.Message }

// Placeholder returns the visible response text recorded on the turn in
// place of a real answer. A single participant's failure never aborts the
// round, so the failure has to be legible in the transcript itself.
func (e *CallError) Placeholder() string {
	switch e.Kind {
	case KindMissingCredential:
		return "[no API key configured]"
	case KindEmptyPayload:
		return fmt.Sprintf("[empty response from provider: %s]", e.Failure)
	case KindUnknownParticipant:
		return "[unknown participant]"
	default:
		return "[the model hit a technical error and could not respond this round]"
	}
}

func missingCredentialResult() Result {
	return Result{Err: &CallError{Kind: KindMissingCredential, Message: "no API key configured"}}
}

// NewUnknownParticipantError builds the defensive error for an order entry
// that matches no adapter.
func NewUnknownParticipantError(p domain.Participant) *CallError {
	return &CallError{Kind: KindUnknownParticipant, Message: fmt.Sprintf("unknown participant %q", p)}
}
