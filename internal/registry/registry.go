package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/sceneforge/internal/scene"
)

// ErrHelperNotFound is returned when an action names a factory, function,
// distribution, or generator that was never registered.
var ErrHelperNotFound = errors.New("helper not found")

// Factory is re-exported from scene: the node-factory contract.
type Factory = scene.Factory

// Func is a named callable usable inside expressions. Arguments arrive
// already evaluated; the result is substituted back into the expression.
type Func = func(ctx context.Context, args []any) (any, error)

// Distribution computes the position of one repeat instance. index runs in
// [0, count).
type Distribution = func(ctx context.Context, params map[string]any, index, count int) ([3]float64, error)

// Generator expands one 2D path-primitive descriptor (arc, bezier, star,
// ...) into a literal point list. Each point is an {x, y} pair.
type Generator = func(ctx context.Context, params map[string]any) ([][2]float64, error)

// Module is implemented by packages that contribute named collaborators.
type Module interface {
	Register(r *Registry)
}

// Registry holds all named collaborators for a single engine instance.
type Registry struct {
	factories     map[string]Factory
	functions     map[string]Func
	distributions map[string]Distribution
	generators    map[string]Generator
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		factories:     make(map[string]Factory),
		functions:     make(map[string]Func),
		distributions: make(map[string]Distribution),
		generators:    make(map[string]Generator),
	}
}

// RegisterFactory registers a node factory under a unique name.
func (r *Registry) RegisterFactory(name string, f Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("factory with name '%s' already registered", name))
	}
	slog.Debug("Registering node factory.", "name", name)
	r.factories[name] = f
}

// RegisterFunction registers an expression function under a unique name.
func (r *Registry) RegisterFunction(name string, f Func) {
	if _, exists := r.functions[name]; exists {
		panic(fmt.Sprintf("expression function with name '%s' already registered", name))
	}
	slog.Debug("Registering expression function.", "name", name)
	r.functions[name] = f
}

// RegisterDistribution registers a repeat distribution under a unique name.
func (r *Registry) RegisterDistribution(name string, d Distribution) {
	if _, exists := r.distributions[name]; exists {
		panic(fmt.Sprintf("distribution with name '%s' already registered", name))
	}
	slog.Debug("Registering distribution.", "name", name)
	r.distributions[name] = d
}

// RegisterGenerator registers a 2D point generator under a unique name.
func (r *Registry) RegisterGenerator(name string, g Generator) {
	if _, exists := r.generators[name]; exists {
		panic(fmt.Sprintf("point generator with name '%s' already registered", name))
	}
	slog.Debug("Registering point generator.", "name", name)
	r.generators[name] = g
}

// Factory looks up a node factory. The boolean reports presence.
func (r *Registry) Factory(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Function looks up an expression function.
func (r *Registry) Function(name string) (Func, bool) {
	f, ok := r.functions[name]
	return f, ok
}

// Distribution looks up a repeat distribution.
func (r *Registry) Distribution(name string) (Distribution, bool) {
	d, ok := r.distributions[name]
	return d, ok
}

// Generator looks up a 2D point generator.
func (r *Registry) Generator(name string) (Generator, bool) {
	g, ok := r.generators[name]
	return g, ok
}

// FactoryNames returns the sorted names of all registered factories.
func (r *Registry) FactoryNames() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
