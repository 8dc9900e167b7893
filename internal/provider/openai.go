package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"agora/internal/config"
	"agora/internal/domain"
)

// gptAdapter calls the OpenAI Chat Completions API. The system directive
// travels as a leading system message.
type gptAdapter struct {
	client   *openai.Client // nil when no credential is configured
	settings config.ProviderSettings
}

// NewGPT builds the gpt adapter.
func NewGPT(apiKey string, settings config.ProviderSettings) Adapter {
	a := &gptAdapter{settings: settings}
	if apiKey != "" {
		client := openai.NewClient(option.WithAPIKey(apiKey))
		a.client = &client
	}
	return a
}

func (a *gptAdapter) Name() domain.Participant { return domain.ParticipantGPT }

func (a *gptAdapter) Call(ctx context.Context, req Request) Result {
	if a.client == nil {
		return missingCredentialResult()
	}
	return callWithRetry(ctx, func(ctx context.Context) (string, int, error) {
		return a.attempt(ctx, req)
	})
}

func (a *gptAdapter) attempt(ctx context.Context, req Request) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout())
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(a.settings.Model),
		Messages:            gptMessages(req),
		MaxCompletionTokens: openai.Int(int64(req.MaxTokens)),
		Temperature:         openai.Float(a.settings.Temperature),
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", 0, err
	}
	return decodeGPT(resp)
}

func gptMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		result = append(result, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleAssistant:
			result = append(result, openai.AssistantMessage(m.Content))
		default:
			result = append(result, openai.UserMessage(m.Content))
		}
	}
	return result
}

// decodeGPT walks the completion defensively: null response, missing
// choices, empty choices, missing message content, whitespace-only text.
func decodeGPT(resp *openai.ChatCompletion) (string, int, error) {
	if resp == nil {
		return "", 0, &DecodeError{Failure: FailNullResponse}
	}
	if resp.Choices == nil {
		return "", 0, &DecodeError{Failure: FailMissingCandidates}
	}
	if len(resp.Choices) == 0 {
		return "", 0, &DecodeError{Failure: FailEmptyCandidates}
	}
	if resp.Choices[0].Message.Content == "" {
		return "", 0, &DecodeError{Failure: FailMissingContent}
	}
	text, err := normalizeText(resp.Choices[0].Message.Content)
	if err != nil {
		return "", 0, err
	}
	return text, int(resp.Usage.CompletionTokens), nil
}
