// Package scope implements the layered variable environment that expressions
// are evaluated against. A child context overlays its parent: lookups fall
// through to outer layers, writes only ever touch the innermost layer, so
// mutating a child never affects an ancestor.
package scope

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Context is one layer of the evaluation environment.
type Context struct {
	parent *Context
	store  map[string]any
}

// New creates a fresh top-level context.
func New() *Context {
	return &Context{store: make(map[string]any)}
}

// Fork creates a child context layered over c. The child starts empty;
// lookups fall through to c.
func (c *Context) Fork() *Context {
	return &Context{parent: c, store: make(map[string]any)}
}

// Get retrieves a value by name, checking the current layer first and then
// recursively the outer layers.
func (c *Context) Get(name string) (any, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if v, ok := cur.store[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set defines or updates a value in the current layer only.
func (c *Context) Set(name string, value any) {
	c.store[name] = value
}

// Bind injects a value into the current layer and returns a restore function
// that removes it again, reinstating any binding the same layer previously
// held. Used for loop and repeat induction variables.
func (c *Context) Bind(name string, value any) (restore func()) {
	prev, had := c.store[name]
	c.store[name] = value
	return func() {
		if had {
			c.store[name] = prev
		} else {
			delete(c.store, name)
		}
	}
}

// Snapshot returns a single-layer copy of every binding currently visible.
// Build nodes retain snapshots so late-stage evaluation still sees loop and
// repeat induction variables after their bindings have been restored.
func (c *Context) Snapshot() *Context {
	snap := New()
	for k, v := range c.Flatten() {
		snap.store[k] = v
	}
	return snap
}

// Flatten merges all layers, outer first, so inner bindings shadow outer
// ones in the result.
func (c *Context) Flatten() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	out := c.parent.Flatten()
	for k, v := range c.store {
		out[k] = v
	}
	return out
}

// Names returns the sorted set of all visible binding names.
func (c *Context) Names() []string {
	flat := c.Flatten()
	names := make([]string, 0, len(flat))
	for k := range flat {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Fingerprint returns a stable serialization of the visible bindings,
// suitable as a cache key component. encoding/json emits map keys in sorted
// order, which makes the result deterministic for equal contexts.
func (c *Context) Fingerprint() string {
	flat := c.Flatten()
	b, err := json.Marshal(flat)
	if err != nil {
		// Values that fail to serialize still need a stable-ish key.
		return fmt.Sprintf("%v", flat)
	}
	return string(b)
}
