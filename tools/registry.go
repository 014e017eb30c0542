// Tool registry: the single lookup point for execution by id.

package tools

import (
	"context"
	"fmt"
	"sync"
)

// Registry maps tool ids to live tool instances. Entries are created at
// bootstrap and replaced wholesale on re-initialization. The registry
// is safe for concurrent lookup; mutation is expected from the
// bootstrap path only.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string

	// Emit receives user-visible failure text for lookups that never
	// reach a tool. Defaults to a no-op.
	Emit func(string)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		Emit:  func(string) {},
	}
}

// Register adds a tool under its id. Registering an id twice silently
// overwrites: the last registration wins, keeping the id's original
// position in the ordering.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := tool.ID()
	if _, exists := r.tools[id]; !exists {
		r.order = append(r.order, id)
	}
	r.tools[id] = tool
}

// Get returns the tool registered under id.
func (r *Registry) Get(id string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[id]
	return tool, exists
}

// IDs returns all tool ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// ExecuteByID looks up id and runs the tool. Unknown ids fail without
// any network use.
func (r *Registry) ExecuteByID(ctx context.Context, id string, opts Options) (Result, error) {
	tool, exists := r.Get(id)
	if !exists {
		err := fmt.Errorf("%w: %q", ErrUnknownTool, id)
		r.Emit(err.Error() + "\n")
		return Result{}, err
	}
	return tool.Execute(ctx, opts)
}
