// Package engine ties the run together: it layers the global evaluation
// context, runs the asset pre-pass, walks the action tree into build nodes,
// materializes them into the target tree, and serves regeneration requests
// against the resulting path registry.
//
// The run state (registry, cache, context) lives on the Engine and is never
// global, so independent engines do not interfere. Execute and Regenerate
// are serialized by an internal mutex; the walk itself is single-threaded.
package engine
