package scene

import (
	"errors"
	"sort"

	"github.com/vk/sceneforge/internal/build"
	"github.com/vk/sceneforge/internal/nodepath"
)

// ErrUnresolvedReference is returned when no registered path matches a
// reference target under any resolution strategy.
var ErrUnresolvedReference = errors.New("unresolved reference")

// Entry records one materialized path: the node, its parent container, the
// build node that produced it, and the schema fragment it came from so
// regeneration can rebuild the subtree from its declaration.
type Entry struct {
	Path   nodepath.Path
	Node   Node
	Parent *Container
	Build  *build.Node
	Source any
}

// Registry maps materialized paths to entries. Paths are unique at any
// instant: registering an occupied path returns the displaced entry so the
// caller can dispose it before the new occupant takes over. The registry is
// single-writer for the duration of a run.
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry creates an empty path registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register stores an entry under its path and returns the entry it
// displaced, if any.
func (r *Registry) Register(entry *Entry) (displaced *Entry) {
	key := entry.Path.String()
	displaced = r.entries[key]
	r.entries[key] = entry
	return displaced
}

// Exact returns the entry registered under exactly this path string.
func (r *Registry) Exact(path string) (*Entry, bool) {
	e, ok := r.entries[path]
	return e, ok
}

// Resolve looks up a reference target using three strategies in order:
// the target qualified by the current path prefix (walking the prefix
// ancestry innermost-first, so a sibling shadows an unrelated root-level
// entry of the same id), the bare target as an exact path, and finally a
// suffix match against all registered paths. The suffix fallback is
// deterministic: the shortest matching path wins, ties broken lexically.
func (r *Registry) Resolve(target string, prefix nodepath.Path) (*Entry, error) {
	for p := prefix; len(p.Segments) > 0; {
		if qualified, err := p.Join(target); err == nil {
			if e, ok := r.entries[qualified.String()]; ok {
				return e, nil
			}
		}
		p = nodepath.Path{Segments: p.Segments[:len(p.Segments)-1]}
	}
	if e, ok := r.entries[target]; ok {
		return e, nil
	}

	var candidates []*Entry
	for _, e := range r.entries {
		if e.Path.HasSuffixString(target) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrUnresolvedReference
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].Path, candidates[j].Path
		if a.Depth() != b.Depth() {
			return a.Depth() < b.Depth()
		}
		return a.String() < b.String()
	})
	return candidates[0], nil
}

// Remove deletes the entry at the exact path, returning it if present.
func (r *Registry) Remove(path string) (*Entry, bool) {
	e, ok := r.entries[path]
	if ok {
		delete(r.entries, path)
	}
	return e, ok
}

// RemoveSubtree deletes the entry at path and every entry beneath it,
// returning the removed entries with the root first.
func (r *Registry) RemoveSubtree(path nodepath.Path) []*Entry {
	var removed []*Entry
	if root, ok := r.Remove(path.String()); ok {
		removed = append(removed, root)
	}
	var keys []string
	for key, e := range r.entries {
		if e.Path.HasPrefix(path) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		removed = append(removed, r.entries[key])
		delete(r.entries, key)
	}
	return removed
}

// Paths returns all registered path strings in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.entries))
	for key := range r.entries {
		paths = append(paths, key)
	}
	sort.Strings(paths)
	return paths
}

// Len reports the number of registered paths.
func (r *Registry) Len() int {
	return len(r.entries)
}
