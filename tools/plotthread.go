// Plot thread tracker: follows every narrative thread to resolution
// or abandonment.

package tools

import (
	"context"
	"fmt"
)

// PlotThreadTracker traces each plot thread introduced in a manuscript
// and reports where it resolves, stalls, or silently disappears. An
// outline document anchors the threads the author intended.
type PlotThreadTracker struct {
	runner *Runner
}

// NewPlotThreadTracker creates the tracker bound to runner.
func NewPlotThreadTracker(runner *Runner) *PlotThreadTracker {
	return &PlotThreadTracker{runner: runner}
}

// ID returns the registry identifier.
func (t *PlotThreadTracker) ID() string {
	return "plot_thread_tracker"
}

// Execute requires manuscript_file and outline_file options.
func (t *PlotThreadTracker) Execute(ctx context.Context, opts Options) (Result, error) {
	return t.runner.Run(ctx, RunSpec{
		ToolID: t.ID(),
		Docs: []DocSpec{
			{Key: "manuscript_file", Label: "manuscript"},
			{Key: "outline_file", Label: "outline"},
		},
		BuildPrompt: func(docs map[string]string) string {
			return fmt.Sprintf(plotThreadTemplate, docs["outline"], docs["manuscript"])
		},
	}, opts)
}

const plotThreadTemplate = `Track the plot threads of the following manuscript against its outline.

=== OUTLINE ===
%s
=== END OUTLINE ===

=== MANUSCRIPT ===
%s
=== END MANUSCRIPT ===

List every plot thread the outline plans and every thread the
manuscript actually opens. For each: where it starts, the scenes that
advance it, and where it resolves. Call out threads the outline
promises that never appear, threads the manuscript opens and abandons,
and resolutions that happen off page. Order the findings by how
damaging they would be to a reader.`

var _ Tool = (*PlotThreadTracker)(nil)
