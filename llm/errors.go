package llm

import "fmt"

// CountError wraps a failure from the remote token counter.
type CountError struct {
	Err error
}

func (e *CountError) Error() string {
	return fmt.Sprintf("token count failed: %v", e.Err)
}

func (e *CountError) Unwrap() error {
	return e.Err
}

// StreamError wraps a failure from a completion exchange, before or
// after deltas have been delivered.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("completion stream failed: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// BudgetError reports a prompt too large to leave the configured
// thinking allowance intact. It is raised before any network spend.
type BudgetError struct {
	Budget TokenBudget
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf(
		"prompt too large: %d prompt tokens leave a thinking budget of %d, below the configured %d",
		e.Budget.PromptTokens, e.Budget.ThinkingBudget, e.Budget.ConfiguredThinking)
}
