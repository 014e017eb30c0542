package tools

// WithDefaults creates a registry holding the full tool catalog, every
// tool bound to runner. Call again with a fresh runner to replace the
// catalog wholesale after a configuration change.
func WithDefaults(runner *Runner) *Registry {
	registry := NewRegistry()
	registry.Emit = func(s string) { runner.emit(s) }

	for _, t := range []Tool{
		NewTokensWordsCounter(runner),
		NewConsistencyChecker(runner),
		NewCharacterAnalyzer(runner),
		NewPlotThreadTracker(runner),
		NewProsePolishCheck(runner),
	} {
		registry.Register(t)
	}
	return registry
}
