// Streaming completion orchestrator: drives one exchange end to end.

package llm

import (
	"context"
	"time"

	"github.com/cleesmith/writers-toolkit-v2/internal/text"
)

// State is the orchestrator's position in one exchange.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateCompleted
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StreamingResult accumulates one exchange. It is owned by the
// orchestrator while streaming and handed off immutably on return.
type StreamingResult struct {
	VisibleText  string
	ThinkingText string

	StartedAt          time.Time
	ElapsedSeconds     float64
	VisibleWordCount   int
	ResponseTokenCount int

	// Incomplete is true when the exchange failed mid-stream; the
	// accumulated text up to the failure is retained.
	Incomplete bool
}

// Orchestrator runs a single streaming exchange against a completion
// service. One orchestrator serves one exchange; create a fresh one
// per call.
type Orchestrator struct {
	service CompletionService
	state   State
}

// NewOrchestrator creates an orchestrator bound to service.
func NewOrchestrator(service CompletionService) *Orchestrator {
	return &Orchestrator{service: service, state: StateIdle}
}

// State returns the current exchange state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run drives the exchange for prompt under budget. Deltas are appended
// strictly in arrival order; that order encodes the model's generation
// order. onEvent, when non-nil, observes each delta as it arrives.
//
// On success the result carries elapsed time, a word count of the
// visible text, and one final CountTokens measurement of the visible
// text. The final count is for reporting only: its failure does not
// fail a completed exchange. On failure the partial accumulation is
// returned alongside the error, marked Incomplete.
func (o *Orchestrator) Run(ctx context.Context, prompt string, budget TokenBudget, system string, onEvent func(StreamEvent)) (StreamingResult, error) {
	result := StreamingResult{StartedAt: time.Now()}
	o.state = StateRequesting

	events := make(chan StreamEvent, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- o.service.StreamComplete(ctx, prompt, budget.Options(system), events)
		close(events)
	}()

	for event := range events {
		o.state = StateStreaming
		switch event.Kind {
		case StreamEventThinking:
			result.ThinkingText += event.Text
		case StreamEventVisible:
			result.VisibleText += event.Text
		}
		if onEvent != nil {
			onEvent(event)
		}
	}
	err := <-errCh

	result.ElapsedSeconds = time.Since(result.StartedAt).Seconds()
	result.VisibleWordCount = text.CountWords(result.VisibleText)

	if err != nil {
		o.state = StateFailed
		result.Incomplete = true
		return result, err
	}

	if result.VisibleText != "" {
		if count, countErr := o.service.CountTokens(ctx, result.VisibleText); countErr == nil {
			result.ResponseTokenCount = count
		}
	}

	o.state = StateCompleted
	return result, nil
}
