// Package schema defines the declarative input document: materials, global
// parameters, schema-level context values, reusable definitions, and the
// action tree that drives generation.
//
// Two dialects exist on disk. Version 4 documents carry an `actions` (or
// `template`) tree directly; legacy documents carry a `procedures` list whose
// steps use the older `action` key. Both are normalized into the same
// internal Action representation before the walker ever sees them, so the
// rest of the system is dialect-agnostic.
package schema
