package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cleesmith/writers-toolkit-v2/config"
	"github.com/cleesmith/writers-toolkit-v2/llm"
)

// spyService scripts CountTokens and StreamComplete and records every
// call, so tests can assert the run aborted before any streaming.
type spyService struct {
	promptTokens int
	countErr     error
	thinking     string
	visible      string
	streamErr    error
	streamCalls  int
	countCalls   int
}

func (s *spyService) Name() string  { return "spy" }
func (s *spyService) Model() string { return "spy-model" }

func (s *spyService) CountTokens(_ context.Context, _ string) (int, error) {
	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.promptTokens, nil
}

func (s *spyService) CompleteOnce(_ context.Context, _ string, _ llm.Options) (llm.Completion, error) {
	return llm.Completion{VisibleText: s.visible, ThinkingText: s.thinking}, nil
}

func (s *spyService) StreamComplete(ctx context.Context, _ string, _ llm.Options, events chan<- llm.StreamEvent) error {
	s.streamCalls++
	if s.thinking != "" {
		select {
		case events <- llm.StreamEvent{Kind: llm.StreamEventThinking, Text: s.thinking}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.visible != "" {
		select {
		case events <- llm.StreamEvent{Kind: llm.StreamEventVisible, Text: s.visible}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.streamErr
}

// fixedProject resolves the current project to a fixed directory.
type fixedProject struct{ dir string }

func (p fixedProject) CurrentProject() (string, error) { return p.dir, nil }

func runnerSettings() config.Settings {
	return config.Settings{
		MaxRetries:              2,
		RequestTimeoutSeconds:   300,
		ContextWindowTokens:     200000,
		ThinkingBudgetTokens:    32000,
		MaxOutputTokens:         128000,
		DesiredOutputTokens:     12000,
		MaxThinkingBudgetTokens: 32000,
		ModelID:                 "spy-model",
	}
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(service llm.CompletionService, emitted *strings.Builder) *Runner {
	emit := func(string) {}
	if emitted != nil {
		emit = func(s string) { emitted.WriteString(s) }
	}
	return NewRunner(service, runnerSettings(), NewFileCache(), nil, emit)
}

func TestRunEndToEndTwoDocumentTool(t *testing.T) {
	dir := t.TempDir()
	manuscript := writeDoc(t, dir, "manuscript.txt", "Chapter one. The river ran north.")
	world := writeDoc(t, dir, "world.txt", "The river runs north out of the hills.")

	service := &spyService{
		promptTokens: 5000,
		thinking:     "Compare river direction in both documents.",
		visible:      "No inconsistencies found between manuscript and world document.",
	}
	var emitted strings.Builder
	runner := newTestRunner(service, &emitted)
	tool := NewConsistencyChecker(runner)

	result, err := tool.Execute(context.Background(), Options{
		"manuscript_file": manuscript,
		"world_file":      world,
		OptSaveDir:        dir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected Success")
	}
	if len(result.OutputFiles) != 2 {
		t.Fatalf("got %d output files, want primary + thinking", len(result.OutputFiles))
	}
	for _, p := range result.OutputFiles {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("output file missing: %v", err)
		}
		if info.Size() == 0 {
			t.Errorf("output file %s is empty", p)
		}
	}

	cached := runner.Cache().Files(tool.ID())
	if len(cached) != 2 || cached[0] != result.OutputFiles[0] {
		t.Errorf("cache = %v, want the run's output files", cached)
	}
	if result.Stats.RunID == "" {
		t.Error("expected a run id")
	}
	if result.Stats.PromptTokens != 5000 {
		t.Errorf("PromptTokens = %d, want 5000", result.Stats.PromptTokens)
	}
	if !strings.Contains(emitted.String(), "No inconsistencies") {
		t.Error("visible deltas were not emitted as progress")
	}
}

func TestRunSkipThinking(t *testing.T) {
	dir := t.TempDir()
	manuscript := writeDoc(t, dir, "m.txt", "text")
	world := writeDoc(t, dir, "w.txt", "text")

	service := &spyService{promptTokens: 100, visible: "fine"}
	runner := newTestRunner(service, nil)

	result, err := NewConsistencyChecker(runner).Execute(context.Background(), Options{
		"manuscript_file": manuscript,
		"world_file":      world,
		OptSaveDir:        dir,
		OptSkipThinking:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.OutputFiles) != 1 {
		t.Errorf("got %d output files, want 1 with skip_thinking", len(result.OutputFiles))
	}
}

func TestRunBudgetOverflowAbortsBeforeStreaming(t *testing.T) {
	dir := t.TempDir()
	manuscript := writeDoc(t, dir, "m.txt", "huge")
	world := writeDoc(t, dir, "w.txt", "huge")

	// 180000 prompt tokens: 20000 available, thinking budget goes
	// negative, far below the 32000 floor.
	service := &spyService{promptTokens: 180000, visible: "never sent"}
	var emitted strings.Builder
	runner := newTestRunner(service, &emitted)

	_, err := NewConsistencyChecker(runner).Execute(context.Background(), Options{
		"manuscript_file": manuscript,
		"world_file":      world,
		OptSaveDir:        dir,
	})
	if err == nil {
		t.Fatal("expected budget overflow error")
	}
	var budgetErr *llm.BudgetError
	if !errors.As(err, &budgetErr) {
		t.Errorf("error %v is not a *llm.BudgetError", err)
	}
	if service.streamCalls != 0 {
		t.Errorf("streamCalls = %d, want 0: the run must abort before any streaming", service.streamCalls)
	}
	if !strings.Contains(emitted.String(), "prompt too large") {
		t.Error("budget failure was not pushed through the emit sink")
	}
}

func TestRunMissingAndEmptyFileAreDistinct(t *testing.T) {
	dir := t.TempDir()
	empty := writeDoc(t, dir, "empty.txt", "")
	present := writeDoc(t, dir, "ok.txt", "content")

	service := &spyService{promptTokens: 10, visible: "x"}
	runner := newTestRunner(service, nil)
	tool := NewConsistencyChecker(runner)

	_, err := tool.Execute(context.Background(), Options{
		"manuscript_file": filepath.Join(dir, "absent.txt"),
		"world_file":      present,
		OptSaveDir:        dir,
	})
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("missing file: got %v, want ErrMissingFile", err)
	}

	_, err = tool.Execute(context.Background(), Options{
		"manuscript_file": empty,
		"world_file":      present,
		OptSaveDir:        dir,
	})
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty file: got %v, want ErrEmptyFile", err)
	}

	if service.streamCalls != 0 {
		t.Errorf("streamCalls = %d, want 0 on validation failures", service.streamCalls)
	}
}

func TestRunSaveDirResolution(t *testing.T) {
	dir := t.TempDir()
	manuscript := writeDoc(t, dir, "m.txt", "text")
	world := writeDoc(t, dir, "w.txt", "text")
	opts := Options{"manuscript_file": manuscript, "world_file": world}

	// No save_dir, no project: hard error before any network use.
	service := &spyService{promptTokens: 10, visible: "x"}
	runner := newTestRunner(service, nil)
	_, err := NewConsistencyChecker(runner).Execute(context.Background(), opts)
	if !errors.Is(err, ErrNoSaveDir) {
		t.Errorf("got %v, want ErrNoSaveDir", err)
	}
	if service.countCalls != 0 || service.streamCalls != 0 {
		t.Error("save-dir failure must precede any network use")
	}

	// Project default applies when save_dir is absent.
	projectDir := t.TempDir()
	runner = NewRunner(service, runnerSettings(), NewFileCache(), fixedProject{dir: projectDir}, nil)
	result, err := NewConsistencyChecker(runner).Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(result.OutputFiles[0]) != projectDir {
		t.Errorf("report in %s, want project dir %s", filepath.Dir(result.OutputFiles[0]), projectDir)
	}
}

func TestRunClearsPreviousGenerationFromCache(t *testing.T) {
	dir := t.TempDir()
	manuscript := writeDoc(t, dir, "m.txt", "text")
	world := writeDoc(t, dir, "w.txt", "text")

	service := &spyService{promptTokens: 10, visible: "fresh output"}
	runner := newTestRunner(service, nil)
	tool := NewConsistencyChecker(runner)

	runner.Cache().AddFile(tool.ID(), "/stale/previous_run.txt")

	result, err := tool.Execute(context.Background(), Options{
		"manuscript_file": manuscript,
		"world_file":      world,
		OptSaveDir:        dir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range runner.Cache().Files(tool.ID()) {
		if p == "/stale/previous_run.txt" {
			t.Error("stale generation still visible in cache after run")
		}
	}
	if len(runner.Cache().Files(tool.ID())) != len(result.OutputFiles) {
		t.Error("cache does not match the fresh run's outputs")
	}
}

func TestRunStripsResidualMarkup(t *testing.T) {
	dir := t.TempDir()
	manuscript := writeDoc(t, dir, "m.txt", "text")

	service := &spyService{
		promptTokens: 10,
		visible:      "# Findings\n\n**Adverbs** are overused.",
	}
	runner := newTestRunner(service, nil)

	result, err := NewProsePolishCheck(runner).Execute(context.Background(), Options{
		"manuscript_file": manuscript,
		OptSaveDir:        dir,
		OptSkipThinking:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := os.ReadFile(result.OutputFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	got := string(body)
	if strings.Contains(got, "#") || strings.Contains(got, "**") {
		t.Errorf("report still contains markup: %q", got)
	}
	if !strings.Contains(got, "Adverbs are overused.") {
		t.Errorf("report lost content: %q", got)
	}
}

func TestCounterToolCountsWithoutStreaming(t *testing.T) {
	dir := t.TempDir()
	manuscript := writeDoc(t, dir, "m.txt", "five words of test prose")

	service := &spyService{promptTokens: 7}
	runner := newTestRunner(service, nil)

	result, err := NewTokensWordsCounter(runner).Execute(context.Background(), Options{
		"manuscript_file": manuscript,
		OptSaveDir:        dir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.streamCalls != 0 {
		t.Error("counter must never stream")
	}
	if len(result.OutputFiles) != 1 {
		t.Errorf("got %d files, want 1 (no thinking companion)", len(result.OutputFiles))
	}
	if result.Stats.VisibleWords != 5 {
		t.Errorf("VisibleWords = %d, want 5", result.Stats.VisibleWords)
	}

	body, _ := os.ReadFile(result.OutputFiles[0])
	if !strings.Contains(string(body), "token count: 7") {
		t.Errorf("report missing token count: %q", body)
	}
}

func TestWithDefaultsCatalog(t *testing.T) {
	runner := newTestRunner(&spyService{}, nil)
	registry := WithDefaults(runner)

	want := []string{
		"tokens_words_counter",
		"manuscript_consistency_checker",
		"character_analyzer",
		"plot_thread_tracker",
		"prose_polish_check",
	}
	got := registry.IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
