package llm

import "github.com/cleesmith/writers-toolkit-v2/config"

// TokenBudget is the per-call allocation derived from a prompt's token
// count and the process settings. Computed fresh before every call and
// never mutated.
type TokenBudget struct {
	ContextWindow   int
	PromptTokens    int
	AvailableTokens int
	MaxTokens       int
	ThinkingBudget  int

	// ConfiguredThinking is the floor the settings demand for the
	// reasoning trace.
	ConfiguredThinking int

	// WasCapped is true when the raw thinking budget exceeded the
	// configured maximum and was clamped down to it.
	WasCapped bool

	// IsPromptTooLarge is true when honoring the configured thinking
	// allowance is impossible. Callers must abort before any network
	// call: the pipeline never trades reasoning depth for completion
	// success.
	IsPromptTooLarge bool
}

// ComputeBudget derives the call budget for a prompt of promptTokens
// tokens. Pure computation, no I/O.
//
// AvailableTokens may go negative for oversized prompts; it is left
// unclamped so the overflow check catches it.
func ComputeBudget(promptTokens int, s config.Settings) TokenBudget {
	available := s.ContextWindowTokens - promptTokens
	maxTokens := min(available, s.MaxOutputTokens)
	thinking := maxTokens - s.DesiredOutputTokens

	capped := false
	if thinking > s.MaxThinkingBudgetTokens {
		thinking = s.MaxThinkingBudgetTokens
		capped = true
	}

	return TokenBudget{
		ContextWindow:      s.ContextWindowTokens,
		PromptTokens:       promptTokens,
		AvailableTokens:    available,
		MaxTokens:          maxTokens,
		ThinkingBudget:     thinking,
		ConfiguredThinking: s.ThinkingBudgetTokens,
		WasCapped:          capped,
		IsPromptTooLarge:   thinking < s.ThinkingBudgetTokens,
	}
}

// Options returns the adapter options this budget allows, with system
// as the call's system instruction.
func (b TokenBudget) Options(system string) Options {
	return Options{
		MaxTokens:      b.MaxTokens,
		ThinkingBudget: b.ThinkingBudget,
		System:         system,
	}
}
