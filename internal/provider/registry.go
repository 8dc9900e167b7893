package provider

import (
	"context"
	"log/slog"

	"agora/internal/config"
	"agora/internal/domain"
)

// Registry maps participant identifiers to adapter instances. Built once
// at startup from credential presence; read-only afterward.
type Registry struct {
	adapters map[domain.Participant]Adapter
	active   []domain.Participant
}

// NewRegistry assembles a registry from explicit adapters. Used directly
// by tests; production code goes through Setup.
func NewRegistry(adapters []Adapter, active []domain.Participant) *Registry {
	m := make(map[domain.Participant]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m, active: active}
}

// Setup builds the full adapter set from configuration. Every member of
// the closed participant set gets an adapter; members without credentials
// keep a missing-credential adapter and are excluded from the active list.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	gemini, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.Providers[domain.ParticipantGemini])
	if err != nil {
		return nil, err
	}

	adapters := []Adapter{
		NewClaude(cfg.AnthropicAPIKey, cfg.Providers[domain.ParticipantClaude]),
		NewGPT(cfg.OpenAIAPIKey, cfg.Providers[domain.ParticipantGPT]),
		gemini,
		NewGrok(cfg.XAIAPIKey, cfg.XAIBaseURL, cfg.Providers[domain.ParticipantGrok]),
	}

	active := cfg.ActiveParticipants()
	for _, p := range active {
		logger.Info("participant active", "participant", p, "model", cfg.Providers[p].Model)
	}
	if len(active) == 0 {
		logger.Warn("no active participants: add provider API keys and restart")
	}

	return NewRegistry(adapters, active), nil
}

// Get returns the adapter for a participant.
func (r *Registry) Get(p domain.Participant) (Adapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// Active returns a copy of the active participant list.
func (r *Registry) Active() []domain.Participant {
	out := make([]domain.Participant, len(r.active))
	copy(out, r.active)
	return out
}
