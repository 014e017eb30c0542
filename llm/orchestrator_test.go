package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go.opencensus.io (transitive dep of google.golang.org/genai) starts
		// a worker goroutine in package init that can never be stopped.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// scriptedService replays a fixed event sequence, recording calls so
// tests can assert what was (or was not) invoked.
type scriptedService struct {
	events      []StreamEvent
	streamErr   error
	tokenCount  int
	countErr    error
	streamCalls int
	countCalls  int
}

func (f *scriptedService) Name() string  { return "scripted" }
func (f *scriptedService) Model() string { return "test-model" }

func (f *scriptedService) CountTokens(_ context.Context, _ string) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.tokenCount, nil
}

func (f *scriptedService) CompleteOnce(_ context.Context, _ string, _ Options) (Completion, error) {
	return Completion{}, nil
}

func (f *scriptedService) StreamComplete(ctx context.Context, _ string, _ Options, events chan<- StreamEvent) error {
	f.streamCalls++
	for _, event := range f.events {
		select {
		case events <- event:
		case <-ctx.Done():
			return &StreamError{Err: ctx.Err()}
		}
	}
	return f.streamErr
}

// chunked splits s into n pieces of the given kind.
func chunked(kind StreamEventKind, s string, n int) []StreamEvent {
	if n < 1 {
		n = 1
	}
	size := (len(s) + n - 1) / n
	var events []StreamEvent
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		events = append(events, StreamEvent{Kind: kind, Text: s[start:end]})
	}
	return events
}

func TestRunAccumulatesInOrder(t *testing.T) {
	thinking := "First consider the manuscript's structure. Then its tone."
	visible := "The manuscript maintains a consistent voice throughout every chapter."

	for _, chunks := range []int{1, 2, 50} {
		events := append(chunked(StreamEventThinking, thinking, chunks),
			chunked(StreamEventVisible, visible, chunks)...)
		service := &scriptedService{events: events, tokenCount: 42}

		result, err := NewOrchestrator(service).Run(context.Background(), "prompt", TokenBudget{MaxTokens: 1000}, "", nil)
		if err != nil {
			t.Fatalf("chunks=%d: unexpected error: %v", chunks, err)
		}
		if result.ThinkingText != thinking {
			t.Errorf("chunks=%d: thinking = %q, want %q", chunks, result.ThinkingText, thinking)
		}
		if result.VisibleText != visible {
			t.Errorf("chunks=%d: visible = %q, want %q", chunks, result.VisibleText, visible)
		}
	}
}

func TestRunInterleavedDeltasPreserveOrder(t *testing.T) {
	events := []StreamEvent{
		{Kind: StreamEventThinking, Text: "a"},
		{Kind: StreamEventVisible, Text: "1"},
		{Kind: StreamEventThinking, Text: "b"},
		{Kind: StreamEventVisible, Text: "2"},
		{Kind: StreamEventVisible, Text: "3"},
	}
	service := &scriptedService{events: events, tokenCount: 3}

	var seen []string
	result, err := NewOrchestrator(service).Run(context.Background(), "p", TokenBudget{MaxTokens: 10}, "", func(e StreamEvent) {
		seen = append(seen, e.Text)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ThinkingText != "ab" || result.VisibleText != "123" {
		t.Errorf("got thinking=%q visible=%q", result.ThinkingText, result.VisibleText)
	}
	if got := strings.Join(seen, ""); got != "a1b23" {
		t.Errorf("onEvent order = %q, want a1b23", got)
	}
}

func TestRunStampsStats(t *testing.T) {
	service := &scriptedService{
		events:     []StreamEvent{{Kind: StreamEventVisible, Text: "four words in total"}},
		tokenCount: 7,
	}

	result, err := NewOrchestrator(service).Run(context.Background(), "p", TokenBudget{MaxTokens: 10}, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.VisibleWordCount != 4 {
		t.Errorf("VisibleWordCount = %d, want 4", result.VisibleWordCount)
	}
	if result.ResponseTokenCount != 7 {
		t.Errorf("ResponseTokenCount = %d, want 7", result.ResponseTokenCount)
	}
	if result.ElapsedSeconds < 0 {
		t.Errorf("ElapsedSeconds = %f, want >= 0", result.ElapsedSeconds)
	}
	if service.countCalls != 1 {
		t.Errorf("countCalls = %d, want exactly 1", service.countCalls)
	}
	if result.Incomplete {
		t.Error("unexpected Incomplete on success")
	}
}

func TestRunMidStreamFailureKeepsPartialText(t *testing.T) {
	service := &scriptedService{
		events: []StreamEvent{
			{Kind: StreamEventThinking, Text: "partial reasoning"},
			{Kind: StreamEventVisible, Text: "partial answer"},
		},
		streamErr: &StreamError{Err: errors.New("connection reset")},
	}

	orch := NewOrchestrator(service)
	result, err := orch.Run(context.Background(), "p", TokenBudget{MaxTokens: 10}, "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Errorf("error %v is not a *StreamError", err)
	}
	if !result.Incomplete {
		t.Error("expected Incomplete result")
	}
	if result.VisibleText != "partial answer" || result.ThinkingText != "partial reasoning" {
		t.Errorf("partial text lost: visible=%q thinking=%q", result.VisibleText, result.ThinkingText)
	}
	if orch.State() != StateFailed {
		t.Errorf("state = %v, want failed", orch.State())
	}
	if service.countCalls != 0 {
		t.Errorf("countCalls = %d after failure, want 0", service.countCalls)
	}
}

func TestRunCountFailureDoesNotFailCompletedExchange(t *testing.T) {
	service := &scriptedService{
		events:   []StreamEvent{{Kind: StreamEventVisible, Text: "done"}},
		countErr: &CountError{Err: errors.New("service unavailable")},
	}

	result, err := NewOrchestrator(service).Run(context.Background(), "p", TokenBudget{MaxTokens: 10}, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResponseTokenCount != 0 {
		t.Errorf("ResponseTokenCount = %d, want 0 when counting fails", result.ResponseTokenCount)
	}
}

func TestStateTransitions(t *testing.T) {
	service := &scriptedService{events: []StreamEvent{{Kind: StreamEventVisible, Text: "x"}}, tokenCount: 1}
	orch := NewOrchestrator(service)

	if orch.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", orch.State())
	}
	if _, err := orch.Run(context.Background(), "p", TokenBudget{MaxTokens: 10}, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orch.State() != StateCompleted {
		t.Errorf("final state = %v, want completed", orch.State())
	}
}
