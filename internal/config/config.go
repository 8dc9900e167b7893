package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"agora/internal/domain"
)

// minCredentialLength is the shortest string accepted as a real API key.
// Placeholder values left in .env files are shorter than any issued key.
const minCredentialLength = 10

// ProviderSettings holds the per-provider generation parameters.
// Defaults can be overridden per provider via an optional YAML file
// pointed at by MODELS_CONFIG.
type ProviderSettings struct {
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the per-attempt call deadline.
func (s ProviderSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// NotationSettings configures the optional notation directive injected
// ahead of a round's messages. The directive text itself is built by the
// notation package; the core treats it as opaque.
type NotationSettings struct {
	Enabled    bool
	Mode       string
	TokenLimit int
}

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	ExportDir   string
	LogDir      string
	Debug       bool

	// Provider credentials
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string
	XAIAPIKey       string
	XAIBaseURL      string

	// Token budget bounds for a single assistant turn
	TokenLimitMin     int
	TokenLimitDefault int
	TokenLimitMax     int

	Notation NotationSettings

	Providers map[domain.Participant]ProviderSettings
}

func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		ExportDir:   getEnv("EXPORT_DIR", "exports"),
		LogDir:      getEnv("LOG_DIR", ""),
		Debug:       getEnv("DEBUG", getDefaultDebug(env)) == "true",

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		XAIAPIKey:       getEnv("XAI_API_KEY", ""),
		XAIBaseURL:      getEnv("XAI_BASE_URL", "https://api.x.ai/v1"),

		TokenLimitMin:     getEnvInt("TOKEN_LIMIT_MIN", 50),
		TokenLimitDefault: getEnvInt("TOKEN_LIMIT_DEFAULT", 300),
		TokenLimitMax:     getEnvInt("TOKEN_LIMIT_MAX", 500),

		Notation: NotationSettings{
			Enabled:    getEnv("NOTATION_ENABLED", "false") == "true",
			Mode:       getEnv("NOTATION_MODE", "extended"),
			TokenLimit: getEnvInt("NOTATION_TOKEN_LIMIT", 500),
		},

		Providers: defaultProviderSettings(),
	}

	// Optional YAML override for per-provider model settings
	if path := os.Getenv("MODELS_CONFIG"); path != "" {
		if err := cfg.loadProviderOverrides(path); err != nil {
			return nil, fmt.Errorf("load models config: %w", err)
		}
	}

	return cfg, nil
}

func defaultProviderSettings() map[domain.Participant]ProviderSettings {
	return map[domain.Participant]ProviderSettings{
		domain.ParticipantClaude: {Model: "claude-opus-4-5-20251101", Temperature: 0.8, TimeoutSeconds: 30},
		domain.ParticipantGPT:    {Model: "gpt-5.1", Temperature: 0.8, TimeoutSeconds: 30},
		domain.ParticipantGemini: {Model: "gemini-2.0-flash-exp", Temperature: 0.8, TimeoutSeconds: 30},
		domain.ParticipantGrok:   {Model: "grok-4-1-fast-reasoning", Temperature: 0.8, TimeoutSeconds: 30},
	}
}

// loadProviderOverrides merges per-provider settings from a YAML file.
// Only fields present in the file replace the defaults.
func (c *Config) loadProviderOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overrides map[string]struct {
		Model          *string  `yaml:"model"`
		Temperature    *float64 `yaml:"temperature"`
		TimeoutSeconds *int     `yaml:"timeout_seconds"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for name, o := range overrides {
		p := domain.Participant(name)
		if !p.Known() {
			return fmt.Errorf("unknown provider %q in %s", name, path)
		}
		settings := c.Providers[p]
		if o.Model != nil {
			settings.Model = *o.Model
		}
		if o.Temperature != nil {
			settings.Temperature = *o.Temperature
		}
		if o.TimeoutSeconds != nil {
			settings.TimeoutSeconds = *o.TimeoutSeconds
		}
		c.Providers[p] = settings
	}
	return nil
}

// CredentialFor returns the configured API key for a participant, or ""
// when none is set.
func (c *Config) CredentialFor(p domain.Participant) string {
	switch p {
	case domain.ParticipantClaude:
		return c.AnthropicAPIKey
	case domain.ParticipantGPT:
		return c.OpenAIAPIKey
	case domain.ParticipantGemini:
		return c.GeminiAPIKey
	case domain.ParticipantGrok:
		return c.XAIAPIKey
	}
	return ""
}

// ActiveParticipants computes, from credential presence, which members of
// the closed participant set can be dispatched. Evaluated once at startup;
// the result is read-only for the lifetime of the process.
func (c *Config) ActiveParticipants() []domain.Participant {
	var active []domain.Participant
	for _, p := range domain.AllParticipants() {
		if len(c.CredentialFor(p)) > minCredentialLength {
			active = append(active, p)
		}
	}
	return active
}

// ClampTokenLimit bounds a requested token budget into [min, max].
// Zero or negative requests fall back to the default.
func (c *Config) ClampTokenLimit(requested int) int {
	if requested <= 0 {
		requested = c.TokenLimitDefault
	}
	if requested < c.TokenLimitMin {
		return c.TokenLimitMin
	}
	if requested > c.TokenLimitMax {
		return c.TokenLimitMax
	}
	return requested
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
