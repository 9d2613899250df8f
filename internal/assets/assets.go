// Package assets resolves the external resources a schema references before
// the synchronous walk begins. Today that means fonts named by text actions.
// All loads run concurrently and the caller blocks on the full set; there is
// no partial-result visibility. A failed load degrades the referencing node
// later, never the run.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/schema"
)

// Loader fetches one named asset's raw bytes.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// FileLoader resolves font names against a directory on disk, trying the
// name as-is and then with common font extensions.
type FileLoader struct {
	Dir string
}

var fontExtensions = []string{"", ".json", ".ttf", ".otf"}

// Load reads the named font file from the loader's directory.
func (l *FileLoader) Load(_ context.Context, name string) ([]byte, error) {
	var firstErr error
	for _, ext := range fontExtensions {
		data, err := os.ReadFile(filepath.Join(l.Dir, name+ext))
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("font %q not found in %s: %w", name, l.Dir, firstErr)
}

// Set holds the outcome of one prefetch pass. Reads after Prefetch returns
// need no locking; the barrier guarantees the map is complete.
type Set struct {
	fonts map[string][]byte
}

// Font returns the loaded bytes for a font name. The boolean reports whether
// the load succeeded.
func (s *Set) Font(name string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	data, ok := s.fonts[name]
	return data, ok
}

// Len reports how many assets loaded successfully.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fonts)
}

// Collect walks an action tree and returns the sorted set of font names its
// text actions reference.
func Collect(actions []*schema.Action) []string {
	seen := make(map[string]struct{})
	var walk func([]*schema.Action)
	walk = func(list []*schema.Action) {
		for _, action := range list {
			if action == nil {
				continue
			}
			if action.Type == "text" && action.Font != "" {
				seen[action.Font] = struct{}{}
			}
			walk(action.Children)
		}
	}
	walk(actions)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prefetch loads every named asset concurrently and returns once all loads
// have settled. Failures are recorded in the diag log and absent from the
// returned set.
func Prefetch(ctx context.Context, loader Loader, names []string, log *diag.Log) *Set {
	set := &Set{fonts: make(map[string][]byte, len(names))}
	if loader == nil || len(names) == 0 {
		return set
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			data, err := loader.Load(ctx, name)
			if err != nil {
				log.Warnf(ctx, "asset failed to load, referencing nodes will be skipped",
					"asset", name, "error", err.Error())
				return
			}
			mu.Lock()
			set.fonts[name] = data
			mu.Unlock()
		}(name)
	}
	wg.Wait()
	return set
}
