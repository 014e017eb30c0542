// Completion service factory: provider name to configured service.

package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/cleesmith/writers-toolkit-v2/config"
)

// EnvOpenAIBaseURL overrides the OpenAI API host, for
// OpenAI-compatible endpoints.
const EnvOpenAIBaseURL = "WTK_OPENAI_BASE_URL"

// NewService creates the completion service for the named provider,
// reading its API key from the environment. An empty provider selects
// anthropic, the primary provider.
func NewService(provider string, cfg config.Settings) (CompletionService, error) {
	if provider == "" {
		provider = "anthropic"
	}
	provider = strings.ToLower(provider)

	switch provider {
	case "anthropic", "openai", "gemini":
	default:
		return nil, fmt.Errorf("unknown provider: %q (supported: %s)",
			provider, strings.Join(config.SupportedProviders(), ", "))
	}

	key, err := config.APIKeyFor(provider)
	if err != nil {
		return nil, err
	}

	switch provider {
	case "openai":
		return NewOpenAIService(key, os.Getenv(EnvOpenAIBaseURL), cfg), nil
	case "gemini":
		return NewGeminiService(key, cfg), nil
	default:
		return NewAnthropicService(key, cfg), nil
	}
}
