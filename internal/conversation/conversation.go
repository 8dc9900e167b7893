package conversation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/notation"
	"agora/internal/provider"
)

// OrderGenerator produces the participant ordering for each round.
// Satisfied by *Roller; tests substitute a scripted implementation.
type OrderGenerator interface {
	Roll(active []domain.Participant) []domain.Participant
	Reset()
}

// Conversation owns one ledger and drives the orchestration loop. All
// state, including the roller's anti-repeat memory, is scoped to the
// conversation, so independent conversations can run concurrently.
type Conversation struct {
	mu       sync.Mutex
	id       string
	ledger   Ledger
	roller   OrderGenerator
	registry *provider.Registry
	cfg      *config.Config
	logger   *slog.Logger
}

// New creates an empty conversation.
func New(cfg *config.Config, registry *provider.Registry, roller OrderGenerator, logger *slog.Logger) *Conversation {
	return &Conversation{
		id:       uuid.NewString(),
		roller:   roller,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// RoundOptions are the per-request overrides accepted by SendMessage.
// The notation directive is an explicit parameter threaded through the
// call chain, never shared mutable state.
type RoundOptions struct {
	TokenLimit      int // 0 means the configured default
	NotationEnabled bool
}

// ParticipantReply is the per-participant summary returned to the caller.
type ParticipantReply struct {
	Participant domain.Participant `json:"participant"`
	Content     string             `json:"content"`
	Tokens      int                `json:"tokens"`
	TimedOut    bool               `json:"timed_out"`
	Error       string             `json:"error,omitempty"`
	AuditFlags  domain.AuditFlags  `json:"audit_flags"`
}

// RoundResult summarizes one completed round.
type RoundResult struct {
	Order           []domain.Participant `json:"order"`
	Replies         []ParticipantReply   `json:"responses"`
	NotationEnabled bool                 `json:"notation_enabled"`
}

// SendMessage runs one full round: append the user turn, roll the order,
// then dispatch each participant strictly in sequence, appending every
// assistant turn before the next projection so later participants see
// earlier participants' real output. A single participant's failure is
// recorded as a placeholder turn and never aborts the round.
func (c *Conversation) SendMessage(ctx context.Context, content string, opts RoundOptions) (*RoundResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &domain.ValidationError{Message: domain.ErrEmptyMessage.Error()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.registry.Active()
	if len(active) == 0 {
		return nil, &domain.UnavailableError{Message: domain.ErrNoActiveParticipants.Error()}
	}

	tokenLimit := c.cfg.ClampTokenLimit(opts.TokenLimit)

	var directive string
	var mode notation.Mode
	if opts.NotationEnabled {
		var err error
		mode, err = notation.ParseMode(c.cfg.Notation.Mode)
		if err != nil {
			return nil, err
		}
		tokenLimit = c.cfg.Notation.TokenLimit
		directive, err = notation.Directive(mode, tokenLimit)
		if err != nil {
			return nil, err
		}
	}

	c.ledger.Append(domain.Turn{
		Kind:            domain.TurnUser,
		Content:         content,
		NotationEnabled: opts.NotationEnabled,
		NotationMode:    string(mode),
		Timestamp:       time.Now().UTC(),
	})

	order := c.roller.Roll(active)
	c.logger.Info("round started",
		"conversation", c.id,
		"order", order,
		"token_limit", tokenLimit,
		"notation", opts.NotationEnabled,
	)

	replies := make([]ParticipantReply, 0, len(order))
	for position, p := range order {
		projected := Project(c.ledger.Turns(), p)

		res := c.dispatch(ctx, p, provider.Request{
			Messages:  projected,
			MaxTokens: tokenLimit,
			System:    directive,
		})

		text := res.Text
		errText := ""
		if res.Err != nil {
			text = res.Err.Placeholder()
			errText = res.Err.Message
			c.logger.Error("participant failed",
				"conversation", c.id,
				"participant", p,
				"error", errText,
				"timed_out", res.TimedOut,
			)
		}

		flags := Audit(text, p, order, position)
		c.ledger.Append(domain.Turn{
			Kind:            domain.TurnAssistant,
			Participant:     p,
			Content:         text,
			Tokens:          res.Tokens,
			TimedOut:        res.TimedOut,
			Error:           errText,
			ContextSent:     projected,
			AuditFlags:      &flags,
			NotationEnabled: opts.NotationEnabled,
			NotationMode:    string(mode),
			Timestamp:       time.Now().UTC(),
		})

		replies = append(replies, ParticipantReply{
			Participant: p,
			Content:     text,
			Tokens:      res.Tokens,
			TimedOut:    res.TimedOut,
			Error:       errText,
			AuditFlags:  flags,
		})
	}

	return &RoundResult{
		Order:           order,
		Replies:         replies,
		NotationEnabled: opts.NotationEnabled,
	}, nil
}

// dispatch invokes the adapter for one participant. An order entry with
// no matching adapter cannot occur when the roll is fed only known
// identifiers, but degrades to a visible placeholder rather than a panic.
func (c *Conversation) dispatch(ctx context.Context, p domain.Participant, req provider.Request) provider.Result {
	adapter, ok := c.registry.Get(p)
	if !ok {
		return provider.Result{Err: provider.NewUnknownParticipantError(p)}
	}
	return adapter.Call(ctx, req)
}

// Reset clears the ledger and the roller's anti-repeat memory together,
// atomically with respect to in-flight rounds.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledger.reset()
	c.roller.Reset()
}

// Snapshot returns a read-only copy of the full turn history.
func (c *Conversation) Snapshot() []domain.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Turns()
}

// Len returns the current number of turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Len()
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }
