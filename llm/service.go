// Package llm provides the completion service abstraction for the tool
// pipeline.
//
// Each service implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific retry and timeout handling
package llm

import (
	"context"
)

// StreamEventKind distinguishes the two delta kinds a streaming
// exchange produces.
type StreamEventKind int

const (
	// StreamEventThinking carries a fragment of the model's reasoning trace.
	StreamEventThinking StreamEventKind = iota
	// StreamEventVisible carries a fragment of the user-facing answer.
	StreamEventVisible
)

// StreamEvent is one incremental fragment of a streaming completion.
// Events are delivered in strict generation order.
type StreamEvent struct {
	Kind StreamEventKind
	Text string
}

// Options holds per-call completion parameters, normally derived from a
// TokenBudget.
type Options struct {
	// MaxTokens caps the total output (thinking plus visible) for the call.
	MaxTokens int
	// ThinkingBudget is the token allowance for the reasoning trace.
	// Zero disables extended thinking.
	ThinkingBudget int
	// System is the system instruction for the call.
	System string
}

// Completion is the outcome of a single-shot exchange.
type Completion struct {
	VisibleText  string
	ThinkingText string
}

// CompletionService is the adapter over an external LLM completion API.
// Retry (bounded by the configured max retries) and timeout policy for
// the initiating request belong to the implementation; once a stream
// has begun, a mid-stream failure is terminal for that call.
type CompletionService interface {
	// Name returns the provider name (for display and logging).
	Name() string

	// Model returns the model identifier in use.
	Model() string

	// CountTokens returns the token count of text under the service's
	// tokenizer. Remote failures are returned as *CountError.
	CountTokens(ctx context.Context, text string) (int, error)

	// CompleteOnce performs a single blocking exchange.
	CompleteOnce(ctx context.Context, prompt string, opts Options) (Completion, error)

	// StreamComplete opens an incremental exchange and sends each delta
	// on events in arrival order, returning when the stream ends. The
	// channel is never closed by the implementation. Mid-stream failures
	// are returned as *StreamError; deltas already sent are not rolled
	// back.
	StreamComplete(ctx context.Context, prompt string, opts Options, events chan<- StreamEvent) error
}
