// Prose polish check: adverb overuse, filter words, and crutch phrases.

package tools

import (
	"context"
	"fmt"
)

// ProsePolishCheck hunts the line-level habits that weaken prose:
// adverb stacking, filter words, repeated sentence shapes, and the
// author's pet phrases.
type ProsePolishCheck struct {
	runner *Runner
}

// NewProsePolishCheck creates the check bound to runner.
func NewProsePolishCheck(runner *Runner) *ProsePolishCheck {
	return &ProsePolishCheck{runner: runner}
}

// ID returns the registry identifier.
func (t *ProsePolishCheck) ID() string {
	return "prose_polish_check"
}

// Execute requires the manuscript_file option.
func (t *ProsePolishCheck) Execute(ctx context.Context, opts Options) (Result, error) {
	return t.runner.Run(ctx, RunSpec{
		ToolID: t.ID(),
		Docs: []DocSpec{
			{Key: "manuscript_file", Label: "manuscript"},
		},
		BuildPrompt: func(docs map[string]string) string {
			return fmt.Sprintf(proseTemplate, docs["manuscript"])
		},
	}, opts)
}

const proseTemplate = `Perform a line-level prose audit of the following manuscript.

=== MANUSCRIPT ===
%s
=== END MANUSCRIPT ===

Report, with quoted examples and rough counts: adverbs propping up weak
verbs, filter words (saw, felt, heard, noticed, realized) distancing
the reader, sentence shapes repeated until they become rhythm ruts, and
phrases the author leans on more than twice. For each habit, show one
quoted instance rewritten. Do not comment on story or structure; this
audit is strictly at the sentence level.`

var _ Tool = (*ProsePolishCheck)(nil)
