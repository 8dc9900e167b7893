// Package provider implements the uniform call contract over the four
// supported model providers. Every adapter applies the same policy: an
// immediate missing-credential result when no key is configured, two
// attempts with a typed defensive decode of the upstream payload, and
// transport failures tagged with a timeout discriminant.
package provider

import (
	"context"

	"agora/internal/domain"
)

// Request is the adapter input: a projected message sequence, the token
// budget forwarded to the provider as its generation limit, and an
// optional system-level directive injected ahead of the messages.
type Request struct {
	Messages  []domain.Message
	MaxTokens int
	System    string
}

// Result is the normalized adapter output. Exactly one of Text (non-empty
// success) or Err is set; TimedOut is only meaningful alongside Err.
type Result struct {
	Text     string
	Tokens   int
	TimedOut bool
	Err      *CallError
}

// Adapter is the uniform per-provider call contract.
type Adapter interface {
	Name() domain.Participant
	Call(ctx context.Context, req Request) Result
}
