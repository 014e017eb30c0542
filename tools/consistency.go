// Manuscript consistency checker: cross-references a manuscript
// against its world or reference document.

package tools

import (
	"context"
	"fmt"
)

// ConsistencyChecker audits a manuscript against a world-building
// document for internal contradictions: geography, timeline, character
// facts, and established rules.
type ConsistencyChecker struct {
	runner *Runner
}

// NewConsistencyChecker creates the checker bound to runner.
func NewConsistencyChecker(runner *Runner) *ConsistencyChecker {
	return &ConsistencyChecker{runner: runner}
}

// ID returns the registry identifier.
func (t *ConsistencyChecker) ID() string {
	return "manuscript_consistency_checker"
}

// Execute requires manuscript_file and world_file options.
func (t *ConsistencyChecker) Execute(ctx context.Context, opts Options) (Result, error) {
	return t.runner.Run(ctx, RunSpec{
		ToolID: t.ID(),
		Docs: []DocSpec{
			{Key: "manuscript_file", Label: "manuscript"},
			{Key: "world_file", Label: "world"},
		},
		BuildPrompt: func(docs map[string]string) string {
			return fmt.Sprintf(consistencyTemplate, docs["world"], docs["manuscript"])
		},
	}, opts)
}

const consistencyTemplate = `You are auditing a manuscript against its reference world document.

=== WORLD DOCUMENT ===
%s
=== END WORLD DOCUMENT ===

=== MANUSCRIPT ===
%s
=== END MANUSCRIPT ===

Compare the manuscript against the world document and report every
inconsistency you find: contradicted facts, impossible geography or
travel times, timeline conflicts, character details that differ between
the two, and violations of rules the world document establishes. For
each finding, quote the conflicting passages and explain the conflict.
If a category has no findings, say so explicitly.`

var _ Tool = (*ConsistencyChecker)(nil)
