// Shared execution skeleton: the protocol every tool variant follows.

package tools

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cleesmith/writers-toolkit-v2/config"
	"github.com/cleesmith/writers-toolkit-v2/internal/text"
	"github.com/cleesmith/writers-toolkit-v2/llm"
)

// PlainTextInstruction is the system instruction shared by every tool
// so output stays plain text regardless of the model's defaults.
const PlainTextInstruction = "You are a professional manuscript analyst. " +
	"Respond in plain text only. Do not use Markdown formatting of any kind: " +
	"no headings, no bold or italics, no code fences, no bullet markers. " +
	"Use blank lines between sections and simple numbered lines where a list is unavoidable."

// DocSpec names one required input document: the option key it arrives
// under and the label used in errors and prompt assembly.
type DocSpec struct {
	Key   string
	Label string
}

// RunSpec is what a concrete tool hands to the runner: identity,
// required documents, and prompt construction. Everything else is the
// shared protocol.
type RunSpec struct {
	ToolID      string
	Variant     string
	Description string
	Docs        []DocSpec

	// BuildPrompt assembles the tool-specific prompt from the loaded
	// documents, keyed by DocSpec.Label.
	BuildPrompt func(docs map[string]string) string
}

// Runner owns the cross-tool execution policy. Tools bind to one
// runner; the bootstrap rebuilds runner and registry wholesale when
// configuration changes.
//
// Two concurrent runs of the same tool id race on the id's cache
// bucket and on the output directory; the runner does not serialize
// them. Distinct tool ids may run concurrently.
type Runner struct {
	mu       sync.RWMutex
	service  llm.CompletionService
	settings config.Settings
	cache    *FileCache
	projects ProjectResolver
	emit     func(string)
}

// NewRunner creates a runner. projects may be nil when no project
// store is wired; emit may be nil to discard progress text.
func NewRunner(service llm.CompletionService, settings config.Settings, cache *FileCache, projects ProjectResolver, emit func(string)) *Runner {
	if emit == nil {
		emit = func(string) {}
	}
	return &Runner{
		service:  service,
		settings: settings,
		cache:    cache,
		projects: projects,
		emit:     emit,
	}
}

// Service returns the bound completion service.
func (r *Runner) Service() llm.CompletionService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.service
}

// SwapService replaces the bound completion service, used when the
// provider configuration changes mid-session.
func (r *Runner) SwapService(service llm.CompletionService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.service = service
}

// Settings returns the bound configuration.
func (r *Runner) Settings() config.Settings {
	return r.settings
}

// Cache returns the cross-run file cache.
func (r *Runner) Cache() *FileCache {
	return r.cache
}

// Emit pushes user-visible progress text through the runner's sink.
func (r *Runner) Emit(format string, args ...any) {
	r.emit(fmt.Sprintf(format, args...))
}

// fail emits the error before returning it, so interactive callers see
// the failure reason even when they never inspect the returned error.
func (r *Runner) fail(err error) (Result, error) {
	r.emit("Error: " + err.Error() + "\n")
	return Result{}, err
}

// Run executes the standard tool protocol for spec:
// clear the cache bucket, resolve the save directory, load and
// validate documents, build the prompt, budget-check it, stream the
// exchange, strip residual markup, and assemble the report.
func (r *Runner) Run(ctx context.Context, spec RunSpec, opts Options) (Result, error) {
	r.cache.Clear(spec.ToolID)

	saveDir, err := r.ResolveSaveDir(opts)
	if err != nil {
		return r.fail(err)
	}

	docs, err := r.LoadDocuments(spec.Docs, opts)
	if err != nil {
		return r.fail(err)
	}

	prompt := spec.BuildPrompt(docs)

	service := r.Service()
	promptTokens, err := service.CountTokens(ctx, prompt)
	if err != nil {
		return r.fail(err)
	}

	budget := llm.ComputeBudget(promptTokens, r.settings)
	if budget.IsPromptTooLarge {
		return r.fail(&llm.BudgetError{Budget: budget})
	}

	r.Emit("Prompt: %d tokens. Max output: %d, thinking budget: %d.\n",
		promptTokens, budget.MaxTokens, budget.ThinkingBudget)

	orchestrator := llm.NewOrchestrator(service)
	streamed, err := orchestrator.Run(ctx, prompt, budget, PlainTextInstruction, func(event llm.StreamEvent) {
		if event.Kind == llm.StreamEventVisible {
			r.emit(event.Text)
		}
	})
	if err != nil {
		return r.fail(err)
	}
	r.emit("\n")

	visible := text.StripMarkup(streamed.VisibleText)

	stats := RunStats{
		RunID:          uuid.NewString(),
		PromptTokens:   promptTokens,
		ResponseTokens: streamed.ResponseTokenCount,
		ThinkingBudget: budget.ThinkingBudget,
		MaxTokens:      budget.MaxTokens,
		ElapsedSeconds: streamed.ElapsedSeconds,
		VisibleWords:   streamed.VisibleWordCount,
	}

	paths, err := AssembleReport(ReportRequest{
		Kind:         spec.ToolID,
		Variant:      spec.Variant,
		Description:  spec.Description,
		SaveDir:      saveDir,
		Timestamp:    time.Now(),
		VisibleText:  visible,
		ThinkingText: streamed.ThinkingText,
		Prompt:       prompt,
		Budget:       budget,
		Stats:        stats,
		SkipThinking: opts.Bool(OptSkipThinking),
	})
	if err != nil {
		return r.fail(err)
	}

	for _, p := range paths {
		r.cache.AddFile(spec.ToolID, p)
		r.Emit("Wrote %s\n", p)
	}

	return Result{Success: true, OutputFiles: paths, Stats: stats}, nil
}

// ResolveSaveDir returns the run's output directory: the save_dir
// option when present, else the current project path. Absence of both
// is a hard error before any network use.
func (r *Runner) ResolveSaveDir(opts Options) (string, error) {
	if dir := opts.String(OptSaveDir); dir != "" {
		return dir, nil
	}
	if r.projects != nil {
		dir, err := r.projects.CurrentProject()
		if err == nil && dir != "" {
			return dir, nil
		}
	}
	return "", ErrNoSaveDir
}

// LoadDocuments reads every required document, keyed by label. A
// missing path option or unreadable file reports ErrMissingFile; a
// present but empty file reports ErrEmptyFile.
func (r *Runner) LoadDocuments(specs []DocSpec, opts Options) (map[string]string, error) {
	docs := make(map[string]string, len(specs))
	for _, spec := range specs {
		path := opts.String(spec.Key)
		if path == "" {
			return nil, fmt.Errorf("%w: no %s path given (option %q)", ErrMissingFile, spec.Label, spec.Key)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s at %s: %v", ErrMissingFile, spec.Label, path, err)
		}
		if len(content) == 0 {
			return nil, fmt.Errorf("%w: %s at %s", ErrEmptyFile, spec.Label, path)
		}
		docs[spec.Label] = string(content)
	}
	return docs, nil
}
