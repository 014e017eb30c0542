// Cross-run file cache: lets a chained tool discover the previous
// tool's freshest outputs within the same session.

package tools

import "sync"

// FileCache maps a tool id to the ordered file paths its most recent
// run produced. Cleared at the start of every run of that id, so at
// most one generation's outputs are visible at a time. In-memory only;
// nothing survives a process restart.
type FileCache struct {
	mu    sync.Mutex
	files map[string][]string
}

// NewFileCache creates an empty cache.
func NewFileCache() *FileCache {
	return &FileCache{files: make(map[string][]string)}
}

// Clear drops all paths recorded for toolID. Other ids are untouched.
func (c *FileCache) Clear(toolID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, toolID)
}

// AddFile appends path to toolID's bucket.
func (c *FileCache) AddFile(toolID, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[toolID] = append(c.files[toolID], path)
}

// Files returns toolID's recorded paths in insertion order.
func (c *FileCache) Files(toolID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, len(c.files[toolID]))
	copy(paths, c.files[toolID])
	return paths
}
