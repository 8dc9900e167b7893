package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"agora/internal/config"
	"agora/internal/domain"
)

// grokAdapter calls the x.ai chat completions endpoint over plain HTTP
// with a single typed decode of the wire payload. The base URL is
// injectable so tests can point it at a local server.
type grokAdapter struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	settings config.ProviderSettings
}

// NewGrok builds the grok adapter.
func NewGrok(apiKey, baseURL string, settings config.ProviderSettings) Adapter {
	return &grokAdapter{
		apiKey:   apiKey,
		baseURL:  baseURL,
		client:   &http.Client{},
		settings: settings,
	}
}

func (a *grokAdapter) Name() domain.Participant { return domain.ParticipantGrok }

func (a *grokAdapter) Call(ctx context.Context, req Request) Result {
	if a.apiKey == "" {
		return missingCredentialResult()
	}
	return callWithRetry(ctx, func(ctx context.Context) (string, int, error) {
		return a.attempt(ctx, req)
	})
}

type grokMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type grokRequest struct {
	Model       string        `json:"model"`
	Messages    []grokMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type grokResponse struct {
	Choices []struct {
		Message *grokMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (a *grokAdapter) attempt(ctx context.Context, req Request) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout())
	defer cancel()

	payload := grokRequest{
		Model:       a.settings.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: a.settings.Temperature,
	}
	if req.System != "" {
		payload.Messages = append(payload.Messages, grokMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, grokMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return decodeGrok(raw)
}

// decodeGrok walks the wire payload defensively: empty body, missing
// choices, empty choices, missing message content, whitespace-only text.
func decodeGrok(raw []byte) (string, int, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", 0, &DecodeError{Failure: FailNullResponse}
	}
	var decoded grokResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Choices == nil {
		return "", 0, &DecodeError{Failure: FailMissingCandidates}
	}
	if len(decoded.Choices) == 0 {
		return "", 0, &DecodeError{Failure: FailEmptyCandidates}
	}
	msg := decoded.Choices[0].Message
	if msg == nil || msg.Content == "" {
		return "", 0, &DecodeError{Failure: FailMissingContent}
	}
	text, err := normalizeText(msg.Content)
	if err != nil {
		return "", 0, err
	}
	return text, decoded.Usage.CompletionTokens, nil
}
