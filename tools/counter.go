// Tokens and words counter: reports whether a manuscript fits the
// configured budgets without spending a full analysis call.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cleesmith/writers-toolkit-v2/internal/text"
	"github.com/cleesmith/writers-toolkit-v2/llm"
)

// TokensWordsCounter counts a manuscript's tokens and words and writes
// a budget report. The only network use is one CountTokens call; it
// never streams a completion, so it is the cheapest way to check
// whether a longer analysis would abort on budget overflow.
type TokensWordsCounter struct {
	runner *Runner
}

// NewTokensWordsCounter creates the counter bound to runner.
func NewTokensWordsCounter(runner *Runner) *TokensWordsCounter {
	return &TokensWordsCounter{runner: runner}
}

// ID returns the registry identifier.
func (t *TokensWordsCounter) ID() string {
	return "tokens_words_counter"
}

// Execute counts tokens and words in the manuscript_file document and
// writes a single report file (no thinking companion).
func (t *TokensWordsCounter) Execute(ctx context.Context, opts Options) (Result, error) {
	r := t.runner
	r.cache.Clear(t.ID())

	saveDir, err := r.ResolveSaveDir(opts)
	if err != nil {
		return r.fail(err)
	}

	docs, err := r.LoadDocuments([]DocSpec{{Key: "manuscript_file", Label: "manuscript"}}, opts)
	if err != nil {
		return r.fail(err)
	}
	manuscript := docs["manuscript"]

	promptTokens, err := r.Service().CountTokens(ctx, manuscript)
	if err != nil {
		return r.fail(err)
	}
	words := text.CountWords(manuscript)
	budget := llm.ComputeBudget(promptTokens, r.Settings())

	r.Emit("Manuscript: %d words, %d tokens.\n", words, promptTokens)

	stats := RunStats{
		RunID:          uuid.NewString(),
		PromptTokens:   promptTokens,
		ThinkingBudget: budget.ThinkingBudget,
		MaxTokens:      budget.MaxTokens,
		VisibleWords:   words,
	}

	paths, err := AssembleReport(ReportRequest{
		Kind:         t.ID(),
		SaveDir:      saveDir,
		Timestamp:    time.Now(),
		VisibleText:  counterReport(words, budget),
		Budget:       budget,
		Stats:        stats,
		SkipThinking: true, // nothing was streamed, there is no trace
	})
	if err != nil {
		return r.fail(err)
	}

	for _, p := range paths {
		r.cache.AddFile(t.ID(), p)
		r.Emit("Wrote %s\n", p)
	}
	return Result{Success: true, OutputFiles: paths, Stats: stats}, nil
}

func counterReport(words int, b llm.TokenBudget) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TOKENS AND WORDS REPORT\n\n")
	fmt.Fprintf(&sb, "word count: %d\n", words)
	fmt.Fprintf(&sb, "token count: %d\n", b.PromptTokens)
	fmt.Fprintf(&sb, "context window: %d\n", b.ContextWindow)
	fmt.Fprintf(&sb, "available tokens after prompt: %d\n", b.AvailableTokens)
	fmt.Fprintf(&sb, "max output tokens for a call: %d\n", b.MaxTokens)
	fmt.Fprintf(&sb, "thinking budget for a call: %d\n", b.ThinkingBudget)
	if b.IsPromptTooLarge {
		sb.WriteString("\nverdict: TOO LARGE - an analysis call on this manuscript would be refused\n")
		sb.WriteString("to protect the configured thinking budget. Split the manuscript or raise\n")
		sb.WriteString("the context window.\n")
	} else {
		sb.WriteString("\nverdict: fits - analysis calls on this manuscript will run.\n")
	}
	return sb.String()
}

var _ Tool = (*TokensWordsCounter)(nil)
