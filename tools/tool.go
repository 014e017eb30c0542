// Package tools provides the manuscript-analysis tool system.
//
// Information Hiding:
// - Prompt construction hidden in tool implementations
// - Registry storage and lookup hidden from consumers
// - Report layout and file naming hidden in the assembler
package tools

import (
	"context"
	"errors"
)

// Option keys recognized by every tool. Tool-specific document keys
// come on top of these; unrecognized keys are ignored.
const (
	OptSaveDir      = "save_dir"
	OptSkipThinking = "skip_thinking"
)

// Options is the per-run configuration bag passed to a tool. Recognized
// keys vary per tool.
type Options map[string]any

// String returns the string value for key, or "" when absent or not a
// string.
func (o Options) String(key string) string {
	v, _ := o[key].(string)
	return v
}

// Bool returns the boolean value for key, or false when absent or not
// a bool.
func (o Options) Bool(key string) bool {
	v, _ := o[key].(bool)
	return v
}

// RunStats carries the measurements of one tool run.
type RunStats struct {
	RunID          string
	PromptTokens   int
	ResponseTokens int
	ThinkingBudget int
	MaxTokens      int
	ElapsedSeconds float64
	VisibleWords   int
}

// Result is returned to the caller when a tool run finishes. Immutable
// once produced.
type Result struct {
	Success     bool
	OutputFiles []string
	Stats       RunStats
}

// Tool is the contract every analysis tool implements. Execute must
// not mutate shared state other than through the file cache, and must
// route all user-visible progress through the runner's emit sink.
type Tool interface {
	// ID returns the stable identifier the registry keys on.
	ID() string

	// Execute runs the tool with the given options.
	Execute(ctx context.Context, opts Options) (Result, error)
}

// ProjectResolver supplies the process-wide current project path, used
// as the default save directory when a run passes none.
type ProjectResolver interface {
	CurrentProject() (string, error)
}

// Input validation failures, distinct so callers can tell them apart.
var (
	ErrMissingFile = errors.New("input file missing")
	ErrEmptyFile   = errors.New("input file empty")
	ErrNoSaveDir   = errors.New("no save directory: pass save_dir or set a current project")
	ErrUnknownTool = errors.New("unknown tool")
)
