// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Required-field enforcement (every missing field reported at once)
// - Provider API key lookup
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Settings holds all pipeline configuration. It is constructed once per
// process and treated as read-only afterwards.
type Settings struct {
	MaxRetries              int
	RequestTimeoutSeconds   int
	ContextWindowTokens     int
	ThinkingBudgetTokens    int
	MaxOutputTokens         int
	DesiredOutputTokens     int
	MaxThinkingBudgetTokens int
	ModelID                 string

	enabledFeatures map[string]bool
}

// Environment variable names for the required settings.
const (
	EnvMaxRetries        = "WTK_MAX_RETRIES"
	EnvRequestTimeout    = "WTK_REQUEST_TIMEOUT_SECONDS"
	EnvContextWindow     = "WTK_CONTEXT_WINDOW_TOKENS"
	EnvThinkingBudget    = "WTK_THINKING_BUDGET_TOKENS"
	EnvMaxOutputTokens   = "WTK_MAX_OUTPUT_TOKENS"
	EnvDesiredOutput     = "WTK_DESIRED_OUTPUT_TOKENS"
	EnvMaxThinkingBudget = "WTK_MAX_THINKING_BUDGET_TOKENS"
	EnvModelID           = "WTK_MODEL_ID"
	EnvFeatures          = "WTK_FEATURES"
)

// New loads settings from the environment. Every required variable must
// be present; the returned error enumerates all missing names so a
// misconfigured install is fixed in one pass rather than one field at a
// time.
func New() (Settings, error) {
	var missing []string

	requireInt := func(key string) int {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
			return 0
		}
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			missing = append(missing, key+" (must be a non-negative integer)")
			return 0
		}
		return i
	}

	s := Settings{
		MaxRetries:              requireInt(EnvMaxRetries),
		RequestTimeoutSeconds:   requireInt(EnvRequestTimeout),
		ContextWindowTokens:     requireInt(EnvContextWindow),
		ThinkingBudgetTokens:    requireInt(EnvThinkingBudget),
		MaxOutputTokens:         requireInt(EnvMaxOutputTokens),
		DesiredOutputTokens:     requireInt(EnvDesiredOutput),
		MaxThinkingBudgetTokens: requireInt(EnvMaxThinkingBudget),
		ModelID:                 os.Getenv(EnvModelID),
	}
	if s.ModelID == "" {
		missing = append(missing, EnvModelID)
	}

	if len(missing) > 0 {
		return Settings{}, fmt.Errorf("config: missing or invalid settings: %s", strings.Join(missing, ", "))
	}

	s.enabledFeatures = parseFeatures(os.Getenv(EnvFeatures))
	return s, nil
}

// MustNew loads settings from the environment and panics on error.
// Use only when a configuration error should be fatal.
func MustNew() Settings {
	s, err := New()
	if err != nil {
		panic(err.Error())
	}
	return s
}

// FeatureEnabled reports whether the named feature flag is set.
func (s Settings) FeatureEnabled(name string) bool {
	return s.enabledFeatures[strings.ToLower(name)]
}

// Features returns the enabled feature names in sorted order.
func (s Settings) Features() []string {
	names := make([]string, 0, len(s.enabledFeatures))
	for name := range s.enabledFeatures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseFeatures(raw string) map[string]bool {
	features := make(map[string]bool)
	for _, f := range strings.Split(raw, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			features[f] = true
		}
	}
	return features
}

// Provider API key environment variables, keyed by provider name.
var providerKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// APIKeyFor returns the API key for a provider from the environment.
func APIKeyFor(provider string) (string, error) {
	envVar, ok := providerKeyEnv[strings.ToLower(provider)]
	if !ok {
		return "", fmt.Errorf("unknown provider: %q", provider)
	}
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", envVar)
	}
	return key, nil
}

// SupportedProviders returns the provider names with key lookup support.
func SupportedProviders() []string {
	names := make([]string, 0, len(providerKeyEnv))
	for name := range providerKeyEnv {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
