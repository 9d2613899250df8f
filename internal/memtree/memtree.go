// Package memtree provides an in-memory implementation of the scene.Target
// adapter. It owns no real GPU or renderer resources; instead it tracks the
// set of live node handles, which makes it suitable for headless runs,
// development, and leak-accounting tests.
package memtree

import (
	"context"
	"sync"

	"github.com/vk/sceneforge/internal/ctxlog"
	"github.com/vk/sceneforge/internal/scene"
)

// Tree is an in-memory scene.Target. Every node that enters the tree
// (instantiated, attached, or cloned) is accounted as a live handle until
// Dispose releases it, so Live() == 0 after a full teardown means no leaks.
type Tree struct {
	mu        sync.Mutex
	live      map[scene.Node]struct{}
	allocated int64
	disposed  int64
}

// New creates an empty in-memory target tree.
func New() *Tree {
	return &Tree{live: make(map[scene.Node]struct{})}
}

// NewContainer instantiates an empty container.
func (t *Tree) NewContainer(ctx context.Context, name string) *scene.Container {
	c := &scene.Container{Name: name, Transform: scene.IdentityTransform()}
	t.account(c)
	return c
}

// Attach inserts child under parent. Factory-built nodes enter the tree's
// accounting here, the first time they are seen.
func (t *Tree) Attach(ctx context.Context, parent *scene.Container, child scene.Node) {
	t.account(child)
	parent.Children = append(parent.Children, child)
}

// Detach removes child from parent. Unknown children are ignored.
func (t *Tree) Detach(ctx context.Context, parent *scene.Container, child scene.Node) {
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}

// Dispose recursively releases the node and its descendants. Releasing a
// node that is already gone is a no-op.
func (t *Tree) Dispose(ctx context.Context, n scene.Node) {
	if n == nil {
		return
	}
	if c, ok := n.(*scene.Container); ok {
		for _, child := range c.Children {
			t.Dispose(ctx, child)
		}
		c.Children = nil
	}

	t.mu.Lock()
	if _, ok := t.live[n]; ok {
		delete(t.live, n)
		t.disposed++
	}
	t.mu.Unlock()
	ctxlog.FromContext(ctx).Debug("Disposed scene node.")
}

// Clone returns a deep copy with freshly owned (accounted) resources.
func (t *Tree) Clone(ctx context.Context, n scene.Node) scene.Node {
	clone := deepCopy(n)
	t.account(clone)
	return clone
}

// account registers every node of a subtree as live, once per handle.
func (t *Tree) account(n scene.Node) {
	if n == nil {
		return
	}
	t.mu.Lock()
	t.accountLocked(n)
	t.mu.Unlock()
}

func (t *Tree) accountLocked(n scene.Node) {
	if _, seen := t.live[n]; !seen {
		t.live[n] = struct{}{}
		t.allocated++
	}
	if c, ok := n.(*scene.Container); ok {
		for _, child := range c.Children {
			t.accountLocked(child)
		}
	}
}

// Allocated reports how many handles this tree has ever accounted for.
func (t *Tree) Allocated() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocated
}

// Disposed reports how many handles have been released.
func (t *Tree) Disposed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

// Live reports the number of handles currently held.
func (t *Tree) Live() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int64(len(t.live))
}

func deepCopy(n scene.Node) scene.Node {
	switch node := n.(type) {
	case *scene.Container:
		copied := &scene.Container{Name: node.Name, Transform: node.Transform}
		for _, child := range node.Children {
			copied.Children = append(copied.Children, deepCopy(child))
		}
		return copied
	case *scene.Drawable:
		copied := *node
		if node.Geometry != nil {
			g := *node.Geometry
			g.Dimensions = append([]float64(nil), node.Geometry.Dimensions...)
			g.Points = append([]scene.Vec3(nil), node.Geometry.Points...)
			copied.Geometry = &g
		}
		return &copied
	case *scene.Curve:
		copied := *node
		copied.Points = append([]scene.Vec3(nil), node.Points...)
		return &copied
	case *scene.Field:
		copied := *node
		return &copied
	}
	return n
}
