package engine

import "sync"

// Diagnostic records one recoverable structural gap encountered during a
// run: a classified type with no locatable configuration method, or a
// method whose instruction stream could not be traced. Diagnostics are
// collected per run instead of being written to a global logger so that
// error visibility is part of the result and testable.
type Diagnostic struct {
	Class  string `json:"class"`
	Method string `json:"method,omitempty"`
	Detail string `json:"detail"`
}

// Collector accumulates diagnostics. Safe for concurrent use by the
// type-pipeline workers.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add records one diagnostic.
func (c *Collector) Add(class, method, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, Diagnostic{Class: class, Method: method, Detail: detail})
}

// Items returns the collected diagnostics.
func (c *Collector) Items() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}
