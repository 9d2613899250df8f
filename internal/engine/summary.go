package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/scene"
)

// Summary reports the shape of the materialized scene after a run.
type Summary struct {
	Paths      int
	Containers int
	Drawables  int
	Curves     int
	Fields     int
	Warnings   int
	Errors     int
}

// String renders the summary as a single human-readable line.
func (s Summary) String() string {
	return fmt.Sprintf("%d paths (%d containers, %d drawables, %d curves, %d fields), %d warnings, %d errors",
		s.Paths, s.Containers, s.Drawables, s.Curves, s.Fields, s.Warnings, s.Errors)
}

// Summary counts the registered paths by node kind, plus the run's recorded
// diagnostics.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Summary{
		Warnings: e.log.CountAtLeast(diag.Warn) - e.log.CountAtLeast(diag.Error),
		Errors:   e.log.CountAtLeast(diag.Error),
	}
	for _, path := range e.sceneReg.Paths() {
		entry, ok := e.sceneReg.Exact(path)
		if !ok {
			continue
		}
		s.Paths++
		switch entry.Node.(type) {
		case *scene.Container:
			s.Containers++
		case *scene.Drawable:
			s.Drawables++
		case *scene.Curve:
			s.Curves++
		case *scene.Field:
			s.Fields++
		}
	}
	return s
}

// Dump writes the materialized tree as an indented outline, one node per
// line, children below their parent.
func (e *Engine) Dump(w io.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root == nil {
		fmt.Fprintln(w, "(empty)")
		return
	}
	dumpNode(w, e.root, 0)
}

func dumpNode(w io.Writer, n scene.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node := n.(type) {
	case *scene.Container:
		fmt.Fprintf(w, "%s%s/\n", indent, node.Name)
		for _, child := range node.Children {
			dumpNode(w, child, depth+1)
		}
	case *scene.Drawable:
		shape := ""
		if node.Geometry != nil {
			shape = node.Geometry.Shape
		}
		if node.MaterialName != "" {
			fmt.Fprintf(w, "%s%s [%s, %s]\n", indent, node.Name, shape, node.MaterialName)
			return
		}
		fmt.Fprintf(w, "%s%s [%s]\n", indent, node.Name, shape)
	case *scene.Curve:
		fmt.Fprintf(w, "%s%s (curve, %d points)\n", indent, node.Name, len(node.Points))
	case *scene.Field:
		fmt.Fprintf(w, "%s%s (field)\n", indent, node.Name)
	}
}
