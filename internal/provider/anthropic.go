package provider

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"agora/internal/config"
	"agora/internal/domain"
)

// claudeAdapter calls the Anthropic Messages API. The system directive is
// passed via the dedicated system parameter, not as a message.
type claudeAdapter struct {
	client   *anthropic.Client // nil when no credential is configured
	settings config.ProviderSettings
}

// NewClaude builds the claude adapter. An empty API key yields an adapter
// that fails every call with a missing-credential result, never touching
// the network.
func NewClaude(apiKey string, settings config.ProviderSettings) Adapter {
	a := &claudeAdapter{settings: settings}
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		a.client = &client
	}
	return a
}

func (a *claudeAdapter) Name() domain.Participant { return domain.ParticipantClaude }

func (a *claudeAdapter) Call(ctx context.Context, req Request) Result {
	if a.client == nil {
		return missingCredentialResult()
	}
	return callWithRetry(ctx, func(ctx context.Context) (string, int, error) {
		return a.attempt(ctx, req)
	})
}

func (a *claudeAdapter) attempt(ctx context.Context, req Request) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout())
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.settings.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(a.settings.Temperature),
		Messages:    claudeMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", 0, err
	}
	return decodeClaude(msg)
}

func claudeMessages(messages []domain.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		switch m.Role {
		case domain.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(block))
		default:
			result = append(result, anthropic.NewUserMessage(block))
		}
	}
	return result
}

// decodeClaude walks the response defensively: null message, missing
// content list, empty list, non-text first block, whitespace-only text.
func decodeClaude(msg *anthropic.Message) (string, int, error) {
	if msg == nil {
		return "", 0, &DecodeError{Failure: FailNullResponse}
	}
	if msg.Content == nil {
		return "", 0, &DecodeError{Failure: FailMissingCandidates}
	}
	if len(msg.Content) == 0 {
		return "", 0, &DecodeError{Failure: FailEmptyCandidates}
	}
	block := msg.Content[0]
	if block.Type != "text" {
		return "", 0, &DecodeError{Failure: FailMissingContent}
	}
	text, err := normalizeText(block.Text)
	if err != nil {
		return "", 0, err
	}
	return text, int(msg.Usage.OutputTokens), nil
}
