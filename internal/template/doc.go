// Package template implements the action walker: it recursively expands the
// normalized action tree into fully evaluated build nodes, resolving
// expressions per node, unrolling repeat and loop constructs, invoking node
// factories for helper calls (nested descriptors included), and splicing 2D
// path primitives into literal point lists.
//
// Expansion is deterministic left-to-right, depth-first; later siblings may
// rely on the registry side effects of earlier ones once materialized.
// Failures are isolated to the smallest enclosing construct: a bad
// expression degrades to 0, an unknown or failing helper skips that node,
// an over-budget loop skips the whole construct. Siblings always proceed.
package template
