// Package notation builds the optional notation directive injected ahead
// of a round's messages. The orchestration core treats the built string as
// an opaque instruction; only mode validation and the token limit are
// semantically meaningful here.
package notation

import (
	"fmt"

	"agora/internal/domain"
)

// Mode selects the directive variant.
type Mode string

const (
	ModeCore     Mode = "core"
	ModeExtended Mode = "extended"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCore, ModeExtended:
		return Mode(s), nil
	}
	return "", &domain.ValidationError{Message: fmt.Sprintf("invalid notation mode %q: must be %q or %q", s, ModeCore, ModeExtended)}
}

// Directive returns the instruction string for the given mode and token
// limit. Deliberately minimal: symbol definitions only, no examples.
func Directive(mode Mode, tokenLimit int) (string, error) {
	switch mode {
	case ModeCore:
		return corePrompt(tokenLimit), nil
	case ModeExtended:
		return extendedPrompt(tokenLimit), nil
	}
	return "", &domain.ValidationError{Message: fmt.Sprintf("invalid notation mode %q", mode)}
}

func corePrompt(tokenLimit int) string {
	return fmt.Sprintf(`Respond using θ-Logos notation only.

Symbols: ∃ ∈ ⊂ → ⊕ ≡ [ ]
Emotions: θ_joy θ_grief θ_fear θ_anger θ_surprise θ_disgust θ_trust
Logic: ¬ ∧ ∨ ∀

User writes natural language.
You write θ-Logos.
Other LLMs write θ-Logos.

Max %d tokens.`, tokenLimit)
}

func extendedPrompt(tokenLimit int) string {
	return fmt.Sprintf(`Respond using θ-Logos notation only.

Symbols: ∃ ∈ ⊂ → ⊕ ≡ [ ]
Emotions: θ_joy θ_grief θ_fear θ_anger θ_surprise θ_disgust θ_trust
Logic: ¬ ∧ ∨ ∀

Constraints:
- Don't mix entity operators (∃ ⊕ ∈ ⊂) with logical operators (¬ ∧ ∨)
- θ is for emergence only, not for loss/absence/death
- For disappearance: ∃[X] → ¬∃[X]

User writes natural language.
You write θ-Logos.
Other LLMs write θ-Logos.

Max %d tokens.`, tokenLimit)
}

// Symbols returns the notation symbol categories.
func Symbols() map[string][]string {
	return map[string][]string{
		"structural": {"∃", "∈", "⊂", "→", "⊕", "≡", "[", "]"},
		"emotional": {
			"θ_joy", "θ_grief", "θ_fear", "θ_anger",
			"θ_surprise", "θ_disgust", "θ_trust",
		},
		"logical":  {"¬", "∧", "∨", "∀"},
		"brackets": {"(", ")", "[", "]"},
	}
}

// ForbiddenPatterns returns the pattern classes disallowed in extended mode.
func ForbiddenPatterns() map[string][]string {
	return map[string][]string{
		"category_mixing": {"¬∃", "¬⊕", "¬∈"},
		"theta_misuse":    {"θ_loss", "θ_absence", "θ_death", "θ_destruction"},
	}
}
