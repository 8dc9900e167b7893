package provider

import (
	"context"
	"errors"
	"net"
	"strings"
)

// maxAttempts bounds the call loop: one retry recovers most transient
// empty payloads (safety-filtered candidates, truncated streams) without
// masking persistent failures as silent blanks.
const maxAttempts = 2

// attemptFunc builds and sends one full upstream request and decodes the
// payload. A *DecodeError return is retryable; any other error is treated
// as a transport failure and terminates the call.
type attemptFunc func(ctx context.Context) (text string, tokens int, err error)

// callWithRetry drives the shared retry policy for every adapter.
func callWithRetry(ctx context.Context, attempt attemptFunc) Result {
	var lastErr *CallError
	for i := 0; i < maxAttempts; i++ {
		text, tokens, err := attempt(ctx)
		if err == nil {
			return Result{Text: text, Tokens: tokens}
		}

		var dec *DecodeError
		if errors.As(err, &dec) {
			lastErr = &CallError{
				Kind:    KindEmptyPayload,
				Failure: dec.Failure,
				Message: dec.Failure.String() + " after retry",
			}
			continue
		}

		// Transport/provider errors terminate immediately, no second attempt.
		ce := transportError(err)
		return Result{TimedOut: ce.TimedOut, Err: ce}
	}
	return Result{Err: lastErr}
}

// transportError classifies a raised error, tagging deadline conditions.
func transportError(err error) *CallError {
	return &CallError{
		Kind:     KindTransport,
		TimedOut: isTimeout(err),
		Message:  err.Error(),
	}
}

// isTimeout prefers explicit error values over text. The substring match
// is a fallback heuristic only, for providers that wrap deadline errors
// into opaque strings.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline")
}

// normalizeText trims a decoded payload and rejects whitespace-only text,
// the last defensive check of every chain.
func normalizeText(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", &DecodeError{Failure: FailEmptyText}
	}
	return trimmed, nil
}
