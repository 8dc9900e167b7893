package config

import (
	"os"
	"path/filepath"
	"testing"

	"agora/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "TOKEN_LIMIT_MIN", "TOKEN_LIMIT_DEFAULT", "TOKEN_LIMIT_MAX", "NOTATION_MODE", "NOTATION_TOKEN_LIMIT", "MODELS_CONFIG"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("default port = %q", cfg.Port)
	}
	if cfg.TokenLimitMin != 50 || cfg.TokenLimitDefault != 300 || cfg.TokenLimitMax != 500 {
		t.Errorf("token bounds wrong: %d/%d/%d", cfg.TokenLimitMin, cfg.TokenLimitDefault, cfg.TokenLimitMax)
	}
	if cfg.Notation.Mode != "extended" || cfg.Notation.TokenLimit != 500 {
		t.Errorf("notation defaults wrong: %+v", cfg.Notation)
	}

	for _, p := range domain.AllParticipants() {
		settings, ok := cfg.Providers[p]
		if !ok {
			t.Errorf("no settings for %s", p)
			continue
		}
		if settings.Model == "" || settings.Temperature != 0.8 || settings.TimeoutSeconds != 30 {
			t.Errorf("%s settings wrong: %+v", p, settings)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_LIMIT_MAX", "800")
	t.Setenv("NOTATION_MODE", "core")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.TokenLimitMax != 800 || cfg.Notation.Mode != "core" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_ModelsConfigOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	yaml := `claude:
  model: claude-sonnet-4-5
  temperature: 0.5
grok:
  timeout_seconds: 60
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MODELS_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	claude := cfg.Providers[domain.ParticipantClaude]
	if claude.Model != "claude-sonnet-4-5" || claude.Temperature != 0.5 {
		t.Errorf("claude override not applied: %+v", claude)
	}
	if claude.TimeoutSeconds != 30 {
		t.Errorf("unset fields must keep defaults: %+v", claude)
	}

	grok := cfg.Providers[domain.ParticipantGrok]
	if grok.TimeoutSeconds != 60 {
		t.Errorf("grok override not applied: %+v", grok)
	}
	if grok.Model == "" {
		t.Error("grok model default lost")
	}

	// gpt untouched by the file
	if cfg.Providers[domain.ParticipantGPT].Temperature != 0.8 {
		t.Error("providers absent from the file must keep defaults")
	}
}

func TestLoad_ModelsConfigUnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte("mistral:\n  model: foo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MODELS_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("unknown provider names must be rejected")
	}
}

func TestActiveParticipants(t *testing.T) {
	cfg := &Config{
		AnthropicAPIKey: "sk-ant-long-enough-key",
		OpenAIAPIKey:    "short", // placeholder, too short to count
		GeminiAPIKey:    "",
		XAIAPIKey:       "xai-long-enough-key-too",
	}

	active := cfg.ActiveParticipants()
	if len(active) != 2 {
		t.Fatalf("expected 2 active participants, got %v", active)
	}
	if active[0] != domain.ParticipantClaude || active[1] != domain.ParticipantGrok {
		t.Errorf("unexpected active set %v", active)
	}
}

func TestClampTokenLimit(t *testing.T) {
	cfg := &Config{TokenLimitMin: 50, TokenLimitDefault: 300, TokenLimitMax: 500}

	tests := []struct {
		requested int
		want      int
	}{
		{0, 300},
		{-5, 300},
		{1, 50},
		{50, 50},
		{200, 200},
		{500, 500},
		{501, 500},
	}
	for _, tt := range tests {
		if got := cfg.ClampTokenLimit(tt.requested); got != tt.want {
			t.Errorf("ClampTokenLimit(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestCredentialFor(t *testing.T) {
	cfg := &Config{
		AnthropicAPIKey: "a",
		OpenAIAPIKey:    "b",
		GeminiAPIKey:    "c",
		XAIAPIKey:       "d",
	}

	tests := map[domain.Participant]string{
		domain.ParticipantClaude: "a",
		domain.ParticipantGPT:    "b",
		domain.ParticipantGemini: "c",
		domain.ParticipantGrok:   "d",
	}
	for p, want := range tests {
		if got := cfg.CredentialFor(p); got != want {
			t.Errorf("CredentialFor(%s) = %q, want %q", p, got, want)
		}
	}
	if got := cfg.CredentialFor(domain.Participant("mistral")); got != "" {
		t.Errorf("unknown participant must have no credential, got %q", got)
	}
}
