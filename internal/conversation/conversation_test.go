package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/provider"
)

// fakeAdapter is a scriptable test implementation of provider.Adapter
// that records every request it receives.
type fakeAdapter struct {
	name     domain.Participant
	respond  func(req provider.Request) provider.Result
	requests []provider.Request
}

func (f *fakeAdapter) Name() domain.Participant { return f.name }

func (f *fakeAdapter) Call(_ context.Context, req provider.Request) provider.Result {
	f.requests = append(f.requests, req)
	if f.respond != nil {
		return f.respond(req)
	}
	return provider.Result{Text: "ok-" + string(f.name), Tokens: 2}
}

// scriptedOrder replays a fixed ordering and records resets.
type scriptedOrder struct {
	order  []domain.Participant
	resets int
}

func (s *scriptedOrder) Roll(_ []domain.Participant) []domain.Participant { return s.order }
func (s *scriptedOrder) Reset()                                           { s.resets++ }

func testConfig() *config.Config {
	return &config.Config{
		TokenLimitMin:     50,
		TokenLimitDefault: 300,
		TokenLimitMax:     500,
		Notation: config.NotationSettings{
			Mode:       "extended",
			TokenLimit: 500,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestConversation(adapters []provider.Adapter, active []domain.Participant, order OrderGenerator) *Conversation {
	registry := provider.NewRegistry(adapters, active)
	return New(testConfig(), registry, order, testLogger())
}

func TestSendMessage_RoundSequence(t *testing.T) {
	gpt := &fakeAdapter{name: domain.ParticipantGPT}
	claude := &fakeAdapter{
		name: domain.ParticipantClaude,
		respond: func(req provider.Request) provider.Result {
			return provider.Result{Text: "ok-claude, saw gpt", Tokens: 3}
		},
	}
	order := &scriptedOrder{order: participants("gpt", "claude")}
	conv := newTestConversation(
		[]provider.Adapter{gpt, claude},
		participants("claude", "gpt"),
		order,
	)

	result, err := conv.SendMessage(context.Background(), "hello", RoundOptions{})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if len(result.Order) != 2 || result.Order[0] != domain.ParticipantGPT {
		t.Errorf("unexpected order %v", result.Order)
	}
	if len(result.Replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(result.Replies))
	}

	turns := conv.Snapshot()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Kind != domain.TurnUser || turns[0].Content != "hello" {
		t.Errorf("first turn must be the user turn: %+v", turns[0])
	}
	if turns[1].Participant != domain.ParticipantGPT || turns[1].Content != "ok-gpt" {
		t.Errorf("second turn must be gpt's: %+v", turns[1])
	}
	if turns[2].Participant != domain.ParticipantClaude || turns[2].Content != "ok-claude, saw gpt" {
		t.Errorf("third turn must be claude's: %+v", turns[2])
	}

	// Sequence numbers contiguous from 1
	for i, turn := range turns {
		if turn.Seq != i+1 {
			t.Errorf("turn %d has seq %d", i, turn.Seq)
		}
	}
}

func TestSendMessage_LaterParticipantSeesEarlierOutput(t *testing.T) {
	gpt := &fakeAdapter{name: domain.ParticipantGPT}
	claude := &fakeAdapter{name: domain.ParticipantClaude}
	order := &scriptedOrder{order: participants("gpt", "claude")}
	conv := newTestConversation(
		[]provider.Adapter{gpt, claude},
		participants("claude", "gpt"),
		order,
	)

	if _, err := conv.SendMessage(context.Background(), "hello", RoundOptions{}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// gpt went first and saw only the user turn
	if len(gpt.requests) != 1 || len(gpt.requests[0].Messages) != 1 {
		t.Fatalf("gpt should have seen exactly the user turn, got %+v", gpt.requests)
	}

	// claude went second and must see gpt's real output, attributed
	if len(claude.requests) != 1 {
		t.Fatalf("claude should have been called once")
	}
	msgs := claude.requests[0].Messages
	if len(msgs) != 2 {
		t.Fatalf("claude should have seen 2 messages, got %d", len(msgs))
	}
	want := "Previous response from GPT:\nok-gpt"
	if msgs[1].Role != domain.RoleUser || msgs[1].Content != want {
		t.Errorf("claude's view of gpt's turn: got %+v, want content %q", msgs[1], want)
	}

	// The exact context sent is preserved on the ledger turn
	turns := conv.Snapshot()
	if len(turns[2].ContextSent) != 2 || turns[2].ContextSent[1].Content != want {
		t.Errorf("context_sent not preserved: %+v", turns[2].ContextSent)
	}
}

func TestSendMessage_FailureNeverAbortsRound(t *testing.T) {
	failing := &fakeAdapter{
		name: domain.ParticipantGPT,
		respond: func(_ provider.Request) provider.Result {
			return provider.Result{
				TimedOut: true,
				Err: &provider.CallError{
					Kind:     provider.KindTransport,
					TimedOut: true,
					Message:  "context deadline exceeded",
				},
			}
		},
	}
	claude := &fakeAdapter{name: domain.ParticipantClaude}
	order := &scriptedOrder{order: participants("gpt", "claude")}
	conv := newTestConversation(
		[]provider.Adapter{failing, claude},
		participants("claude", "gpt"),
		order,
	)

	result, err := conv.SendMessage(context.Background(), "hello", RoundOptions{})
	if err != nil {
		t.Fatalf("a participant failure must not fail the round: %v", err)
	}

	if len(result.Replies) != 2 {
		t.Fatalf("round must continue past the failure, got %d replies", len(result.Replies))
	}
	failed := result.Replies[0]
	if failed.Error == "" || !failed.TimedOut {
		t.Errorf("failed reply must carry the error and timeout tag: %+v", failed)
	}
	if !strings.HasPrefix(failed.Content, "[") {
		t.Errorf("failed reply must carry a placeholder text, got %q", failed.Content)
	}
	if len(claude.requests) != 1 {
		t.Error("the next participant must still be dispatched")
	}

	turns := conv.Snapshot()
	if turns[1].Error == "" || !turns[1].TimedOut {
		t.Errorf("ledger turn must record the failure: %+v", turns[1])
	}
}

func TestSendMessage_UnknownParticipantDegrades(t *testing.T) {
	claude := &fakeAdapter{name: domain.ParticipantClaude}
	// gemini is rolled but has no adapter registered
	order := &scriptedOrder{order: participants("gemini", "claude")}
	conv := newTestConversation(
		[]provider.Adapter{claude},
		participants("claude", "gemini"),
		order,
	)

	result, err := conv.SendMessage(context.Background(), "hello", RoundOptions{})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if result.Replies[0].Error == "" {
		t.Error("unknown participant must degrade to an error reply")
	}
	if result.Replies[1].Content != "ok-claude" {
		t.Error("round must continue after the unknown participant")
	}
}

func TestSendMessage_EmptyInput(t *testing.T) {
	conv := newTestConversation(
		[]provider.Adapter{&fakeAdapter{name: domain.ParticipantClaude}},
		participants("claude"),
		&scriptedOrder{order: participants("claude")},
	)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := conv.SendMessage(context.Background(), content, RoundOptions{})
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("content %q: expected ValidationError, got %v", content, err)
		}
	}
	if conv.Len() != 0 {
		t.Error("rejected input must not touch the ledger")
	}
}

func TestSendMessage_NoActiveParticipants(t *testing.T) {
	conv := newTestConversation(nil, nil, &scriptedOrder{})

	_, err := conv.SendMessage(context.Background(), "hello", RoundOptions{})
	var uErr *domain.UnavailableError
	if !errors.As(err, &uErr) {
		t.Errorf("expected UnavailableError, got %v", err)
	}
}

func TestSendMessage_TokenLimitClamped(t *testing.T) {
	adapter := &fakeAdapter{name: domain.ParticipantClaude}
	conv := newTestConversation(
		[]provider.Adapter{adapter},
		participants("claude"),
		&scriptedOrder{order: participants("claude")},
	)

	tests := []struct {
		requested int
		want      int
	}{
		{0, 300},
		{10, 50},
		{9999, 500},
		{200, 200},
	}
	for _, tt := range tests {
		adapter.requests = nil
		if _, err := conv.SendMessage(context.Background(), "hi", RoundOptions{TokenLimit: tt.requested}); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		if got := adapter.requests[0].MaxTokens; got != tt.want {
			t.Errorf("requested %d: forwarded budget %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestSendMessage_NotationDirective(t *testing.T) {
	adapter := &fakeAdapter{name: domain.ParticipantClaude}
	conv := newTestConversation(
		[]provider.Adapter{adapter},
		participants("claude"),
		&scriptedOrder{order: participants("claude")},
	)

	if _, err := conv.SendMessage(context.Background(), "hi", RoundOptions{NotationEnabled: true}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	req := adapter.requests[0]
	if req.System == "" {
		t.Fatal("notation round must inject the directive")
	}
	if !strings.Contains(req.System, "θ-Logos") {
		t.Errorf("directive text missing notation marker: %q", req.System)
	}
	if req.MaxTokens != 500 {
		t.Errorf("notation round must use the notation token limit, got %d", req.MaxTokens)
	}

	turns := conv.Snapshot()
	if !turns[0].NotationEnabled || turns[0].NotationMode != "extended" {
		t.Errorf("notation state not recorded on the turn: %+v", turns[0])
	}
}

func TestSendMessage_DirectiveOffByDefault(t *testing.T) {
	adapter := &fakeAdapter{name: domain.ParticipantClaude}
	conv := newTestConversation(
		[]provider.Adapter{adapter},
		participants("claude"),
		&scriptedOrder{order: participants("claude")},
	)

	if _, err := conv.SendMessage(context.Background(), "hi", RoundOptions{}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if adapter.requests[0].System != "" {
		t.Error("no directive must be injected unless the round enables it")
	}
}

func TestReset(t *testing.T) {
	order := &scriptedOrder{order: participants("claude")}
	conv := newTestConversation(
		[]provider.Adapter{&fakeAdapter{name: domain.ParticipantClaude}},
		participants("claude"),
		order,
	)

	if _, err := conv.SendMessage(context.Background(), "hello", RoundOptions{}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if conv.Len() == 0 {
		t.Fatal("expected turns before reset")
	}

	conv.Reset()

	if conv.Len() != 0 {
		t.Error("reset must clear the ledger")
	}
	if order.resets != 1 {
		t.Error("reset must clear the order generator's memory too")
	}
}

func TestAuditFlagsComputedPerTurn(t *testing.T) {
	gpt := &fakeAdapter{
		name: domain.ParticipantGPT,
		respond: func(_ provider.Request) provider.Result {
			// References claude, who speaks later this round
			return provider.Result{Text: "[claude] will disagree", Tokens: 3}
		},
	}
	claude := &fakeAdapter{name: domain.ParticipantClaude}
	order := &scriptedOrder{order: participants("gpt", "claude")}
	conv := newTestConversation(
		[]provider.Adapter{gpt, claude},
		participants("claude", "gpt"),
		order,
	)

	result, err := conv.SendMessage(context.Background(), "hello", RoundOptions{})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	flags := result.Replies[0].AuditFlags
	if !flags.InventsFutureResponses || !flags.QuotesOthers {
		t.Errorf("expected future+quotes flags, got %+v", flags)
	}

	turns := conv.Snapshot()
	if turns[1].AuditFlags == nil || !turns[1].AuditFlags.InventsFutureResponses {
		t.Errorf("flags must be recorded on the ledger turn: %+v", turns[1].AuditFlags)
	}
}
