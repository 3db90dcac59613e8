package perimeter

import "sync"

// ResultTracker holds the most recent generation result for the HTTP
// artifact endpoints. SetResult replaces the previous result wholesale, so
// readers never observe a half-updated cache; Results are immutable once
// published, so handing out the pointer is safe.
type ResultTracker struct {
	mu          sync.RWMutex
	result      *Result
	generations uint64
}

// NewResultTracker creates an empty tracker.
func NewResultTracker() *ResultTracker {
	return &ResultTracker{}
}

// SetResult stores a new result, invalidating the previous one.
func (t *ResultTracker) SetResult(res *Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = res
	t.generations++
}

// Result returns the latest result and whether one exists.
func (t *ResultTracker) Result() (*Result, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result, t.result != nil
}

// HasResult reports whether a generation has completed since startup (or
// the last Clear).
func (t *ResultTracker) HasResult() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result != nil
}

// Generations returns how many results have been stored.
func (t *ResultTracker) Generations() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generations
}

// Clear drops the cached result. The generation counter keeps counting.
func (t *ResultTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = nil
}
