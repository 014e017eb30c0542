// Character analyzer: voice, arc, and on-page presence per character.

package tools

import (
	"context"
	"fmt"
)

// CharacterAnalyzer maps every named character in a manuscript:
// introductions, arcs, voice consistency, and disappearances.
type CharacterAnalyzer struct {
	runner *Runner
}

// NewCharacterAnalyzer creates the analyzer bound to runner.
func NewCharacterAnalyzer(runner *Runner) *CharacterAnalyzer {
	return &CharacterAnalyzer{runner: runner}
}

// ID returns the registry identifier.
func (t *CharacterAnalyzer) ID() string {
	return "character_analyzer"
}

// Execute requires the manuscript_file option.
func (t *CharacterAnalyzer) Execute(ctx context.Context, opts Options) (Result, error) {
	return t.runner.Run(ctx, RunSpec{
		ToolID: t.ID(),
		Docs: []DocSpec{
			{Key: "manuscript_file", Label: "manuscript"},
		},
		BuildPrompt: func(docs map[string]string) string {
			return fmt.Sprintf(characterTemplate, docs["manuscript"])
		},
	}, opts)
}

const characterTemplate = `Analyze the characters in the following manuscript.

=== MANUSCRIPT ===
%s
=== END MANUSCRIPT ===

For every named character: where they are introduced, their role, how
their voice is distinguished in dialogue, the shape of their arc, and
any stretch of the manuscript where they vanish without explanation.
Flag characters whose voice drifts between chapters and characters who
appear once and never again. Close with the three characters most in
need of revision work and why.`

var _ Tool = (*CharacterAnalyzer)(nil)
