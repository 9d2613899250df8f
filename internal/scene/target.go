package scene

import "context"

// Target is the adapter contract for the tree representation the
// interpreter materializes into. The engine owns exactly one Target per run
// and reaches the representation only through it: instantiation, structural
// edits, resource disposal, and cloning.
type Target interface {
	// NewContainer instantiates an empty container node.
	NewContainer(ctx context.Context, name string) *Container

	// Attach inserts child under parent.
	Attach(ctx context.Context, parent *Container, child Node)

	// Detach removes child from parent. Detaching a node that is not a
	// child of parent is a no-op.
	Detach(ctx context.Context, parent *Container, child Node)

	// Dispose recursively releases every resource owned by the node and its
	// descendants. A node must be disposed exactly once.
	Dispose(ctx context.Context, n Node)

	// Clone returns a deep copy of the node with freshly owned resources.
	Clone(ctx context.Context, n Node) Node
}
