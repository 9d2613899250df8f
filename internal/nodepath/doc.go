/*
Package nodepath provides a structured, type-safe representation for the
dot-joined identifiers under which materialized scene nodes are registered.

The canonical format is a dot-separated sequence of segments, each an
identifier optionally carrying an instance index, e.g. `root.ring.spoke[3]`.

This package centralizes all formatting, parsing, and matching logic so that
the registry, walker, and regeneration controller agree on one identifier
schema.
*/
package nodepath
