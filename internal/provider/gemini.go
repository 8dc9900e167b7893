package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"agora/internal/config"
	"agora/internal/domain"
)

// geminiAdapter calls the Gemini API. The system directive travels as the
// request's system instruction. Gemini token counts fall back to a word
// count when the response carries no usage metadata.
type geminiAdapter struct {
	client   *genai.Client // nil when no credential is configured
	settings config.ProviderSettings
}

// NewGemini builds the gemini adapter. Client construction needs a context
// and can fail, unlike the other SDKs.
func NewGemini(ctx context.Context, apiKey string, settings config.ProviderSettings) (Adapter, error) {
	a := &geminiAdapter{settings: settings}
	if apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		a.client = client
	}
	return a, nil
}

func (a *geminiAdapter) Name() domain.Participant { return domain.ParticipantGemini }

func (a *geminiAdapter) Call(ctx context.Context, req Request) Result {
	if a.client == nil {
		return missingCredentialResult()
	}
	return callWithRetry(ctx, func(ctx context.Context) (string, int, error) {
		return a.attempt(ctx, req)
	})
}

func (a *geminiAdapter) attempt(ctx context.Context, req Request) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout())
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		Temperature:     genai.Ptr(float32(a.settings.Temperature)),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.settings.Model, geminiContents(req.Messages), cfg)
	if err != nil {
		return "", 0, err
	}
	return decodeGemini(resp)
}

func geminiContents(messages []domain.Message) []*genai.Content {
	result := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		result = append(result, genai.NewContentFromText(m.Content, role))
	}
	return result
}

// decodeGemini walks the response defensively: null response, missing
// candidates, empty candidates, missing content/parts, whitespace-only
// text. Safety-filtered responses surface as a missing candidate list.
func decodeGemini(resp *genai.GenerateContentResponse) (string, int, error) {
	if resp == nil {
		return "", 0, &DecodeError{Failure: FailNullResponse}
	}
	if resp.Candidates == nil {
		return "", 0, &DecodeError{Failure: FailMissingCandidates}
	}
	if len(resp.Candidates) == 0 {
		return "", 0, &DecodeError{Failure: FailEmptyCandidates}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", 0, &DecodeError{Failure: FailMissingContent}
	}
	text, err := normalizeText(candidate.Content.Parts[0].Text)
	if err != nil {
		return "", 0, err
	}
	return text, geminiTokens(resp, text), nil
}

// geminiTokens prefers reported usage and approximates with a word count
// otherwise, since older Gemini endpoints omit completion-token usage.
func geminiTokens(resp *genai.GenerateContentResponse, text string) int {
	if resp.UsageMetadata != nil && resp.UsageMetadata.CandidatesTokenCount > 0 {
		return int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return len(strings.Fields(text))
}
