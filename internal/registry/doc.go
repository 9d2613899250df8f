// Package registry provides the per-run lookup tables for every named
// collaborator the interpreter can dispatch to: node factories, expression
// functions, repeat distributions, and 2D point generators.
//
// A Registry is an explicit object owned by one engine instance and passed
// by reference through the walk. It is never a module-level singleton, so
// concurrent runs and tests cannot interfere with each other. Registration
// happens at startup; a duplicate name is a programmer error and panics.
package registry
