// Report assembler: turns a streaming result plus run metadata into
// deterministic output files.

package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleesmith/writers-toolkit-v2/llm"
)

// filenameTimestamp is second-resolution. Back-to-back runs of the same
// tool within one second produce colliding names; that window is an
// accepted boundary of the naming scheme, not silently handled.
const filenameTimestamp = "20060102_150405"

// ReportRequest describes one report to assemble.
type ReportRequest struct {
	Kind        string // tool or check kind, first filename component
	Variant     string // optional filename variant
	Description string // optional filename description
	SaveDir     string
	Timestamp   time.Time

	VisibleText  string
	ThinkingText string
	Prompt       string
	Budget       llm.TokenBudget
	Stats        RunStats

	// SkipThinking suppresses the companion thinking file.
	SkipThinking bool
}

// AssembleReport writes the primary report and, unless suppressed, a
// companion file with the reasoning trace and run statistics. The save
// directory is created when absent. Returned paths are absolute,
// primary report first.
func AssembleReport(req ReportRequest) ([]string, error) {
	if err := os.MkdirAll(req.SaveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	base := reportBaseName(req.Kind, req.Variant, req.Description, req.Timestamp)

	reportPath, err := filepath.Abs(filepath.Join(req.SaveDir, base+".txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report path: %w", err)
	}
	if err := os.WriteFile(reportPath, []byte(req.VisibleText), 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	paths := []string{reportPath}

	if !req.SkipThinking {
		thinkingPath, err := filepath.Abs(filepath.Join(req.SaveDir, base+"_thinking.txt"))
		if err != nil {
			return paths, fmt.Errorf("failed to resolve thinking path: %w", err)
		}
		if err := os.WriteFile(thinkingPath, []byte(thinkingFileContent(req)), 0644); err != nil {
			return paths, fmt.Errorf("failed to write thinking file: %w", err)
		}
		paths = append(paths, thinkingPath)
	}

	return paths, nil
}

func reportBaseName(kind, variant, description string, ts time.Time) string {
	parts := []string{sanitizeNamePart(kind)}
	if variant != "" {
		parts = append(parts, sanitizeNamePart(variant))
	}
	if description != "" {
		parts = append(parts, sanitizeNamePart(description))
	}
	parts = append(parts, ts.Format(filenameTimestamp))
	return strings.Join(parts, "_")
}

// sanitizeNamePart keeps filename components portable: lowercase,
// spaces to underscores, path separators dropped.
func sanitizeNamePart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, s)
	return s
}

func thinkingFileContent(req ReportRequest) string {
	var b strings.Builder

	b.WriteString("=== AI THINKING PROCESS ===\n\n")
	b.WriteString(req.ThinkingText)
	b.WriteString("\n\n=== RUN STATISTICS ===\n")
	fmt.Fprintf(&b, "run id: %s\n", req.Stats.RunID)
	fmt.Fprintf(&b, "completed: %s\n", req.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "prompt tokens: %d\n", req.Stats.PromptTokens)
	fmt.Fprintf(&b, "response tokens: %d\n", req.Stats.ResponseTokens)
	fmt.Fprintf(&b, "visible words: %d\n", req.Stats.VisibleWords)
	fmt.Fprintf(&b, "elapsed seconds: %.1f\n", req.Stats.ElapsedSeconds)
	fmt.Fprintf(&b, "context window: %d\n", req.Budget.ContextWindow)
	fmt.Fprintf(&b, "max output tokens: %d\n", req.Budget.MaxTokens)
	fmt.Fprintf(&b, "thinking budget: %d", req.Budget.ThinkingBudget)
	if req.Budget.WasCapped {
		b.WriteString(" (capped)")
	}
	b.WriteString("\n")

	return b.String()
}
