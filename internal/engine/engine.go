package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/sceneforge/internal/assets"
	"github.com/vk/sceneforge/internal/build"
	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/expr"
	"github.com/vk/sceneforge/internal/nodepath"
	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/scene"
	"github.com/vk/sceneforge/internal/schema"
	"github.com/vk/sceneforge/internal/scope"
	"github.com/vk/sceneforge/internal/template"
)

// ErrUnknownPath is returned by Regenerate when no registry entry exists for
// the requested path.
var ErrUnknownPath = errors.New("no registry entry for path")

// ErrUnknownParameter is returned by SetParameter for a name the schema does
// not declare.
var ErrUnknownParameter = errors.New("unknown global parameter")

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithFontLoader supplies the loader the asset pre-pass uses for fonts.
// Without one, text nodes that name a font are skipped.
func WithFontLoader(l assets.Loader) Option {
	return func(e *Engine) { e.fontLoader = l }
}

// Engine owns all state of one interpreter run: the document, the expression
// cache, the path registry, and the materialized root. Execute, Regenerate,
// and SetParameter are safe to call from multiple goroutines; they take the
// run mutex and never overlap.
type Engine struct {
	mu sync.Mutex

	doc    *schema.Document
	reg    *registry.Registry
	target scene.Target
	log    *diag.Log

	eval     *expr.Evaluator
	proc     *template.Processor
	sceneReg *scene.Registry
	mat      *scene.Materializer

	fontLoader assets.Loader
	fonts      *assets.Set

	// overrides holds SetParameter values, consulted ahead of the schema's
	// declared global parameter values on every context rebuild.
	overrides map[string]any

	root *scene.Container
}

// New builds an engine for one document. The document is normalized and
// validated here; a malformed document is the only error class that refuses
// construction. Schema definitions are compiled into the registry once, up
// front.
func New(doc *schema.Document, reg *registry.Registry, target scene.Target, log *diag.Log, opts ...Option) (*Engine, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", schema.ErrInvalidDocument)
	}
	if err := doc.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidDocument, err)
	}
	if problems := doc.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidDocument, errors.Join(problems...))
	}
	for _, warning := range doc.Warnings() {
		log.Warnf(context.Background(), "schema has an advisory finding, the offending node will be skipped",
			"finding", warning.Error())
	}

	e := &Engine{
		doc:       doc,
		reg:       reg,
		target:    target,
		log:       log,
		overrides: make(map[string]any),
		sceneReg:  scene.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.eval = expr.New(reg, log)
	e.proc = template.NewProcessor(e.eval, reg, log)
	e.mat = scene.NewMaterializer(e.sceneReg, target, reg, doc.Materials, e.eval, log)

	compileDefinitions(doc.Definitions, e.eval, reg, log)
	return e, nil
}

// Execute runs the full pipeline and returns the materialized root
// container. Calling it again disposes the previous run's content first.
// All non-fatal failures are recorded in the diag log; Execute itself only
// errors on a cancelled context.
func (e *Engine) Execute(ctx context.Context) (*scene.Container, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.eval.ClearCache()
	e.disposeAll(ctx)

	env := e.buildGlobalEnv(ctx)

	// Asset barrier: every font loads before the synchronous walk starts.
	e.fonts = assets.Prefetch(ctx, e.fontLoader, assets.Collect(e.doc.Actions), e.log)

	e.root = e.target.NewContainer(ctx, "root")
	nodes := e.proc.Process(ctx, e.doc.Actions, env, nodepath.Path{})
	for _, node := range e.dropMissingFonts(ctx, nodes) {
		e.mat.Materialize(ctx, node, e.root)
	}
	return e.root, nil
}

// Regenerate disposes the content at path and rebuilds it from its source
// declaration. A path produced by a repeat or loop rebuilds the whole
// construct: every sibling instance of the same declaration is disposed and
// re-expanded, so a shrunken count cannot strand stale instances. Local
// parameters re-evaluate against the current global context, so a changed
// global parameter takes effect. Unrelated siblings and ancestors are
// untouched. The expression cache is cleared globally; it has
// no fine-grained invalidation.
func (e *Engine) Regenerate(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	parsed, err := nodepath.Parse(path)
	if err != nil {
		return fmt.Errorf("regenerate: %w", err)
	}
	entry, ok := e.sceneReg.Exact(parsed.String())
	if !ok {
		return fmt.Errorf("regenerate: %w: %s", ErrUnknownPath, path)
	}
	action, ok := entry.Source.(*schema.Action)
	if !ok {
		return fmt.Errorf("regenerate: entry at %s has no source declaration", path)
	}

	parent := entry.Parent
	if parent == nil {
		parent = e.root
	}
	prefix := nodepath.Path{Segments: parsed.Segments[:len(parsed.Segments)-1]}

	e.eval.ClearCache()
	e.disposeProduced(ctx, prefix, parsed.Segments[len(parsed.Segments)-1].Name)

	env := e.buildGlobalEnv(ctx)
	nodes := e.proc.Process(ctx, []*schema.Action{action}, env, prefix)
	for _, node := range e.dropMissingFonts(ctx, nodes) {
		e.mat.Materialize(ctx, node, parent)
	}
	return nil
}

// SetParameter overrides a declared global parameter. Numeric values are
// clamped to the parameter's declared bounds; clamping is recorded in the
// diag log. The change takes effect on the next Execute or Regenerate.
func (e *Engine) SetParameter(ctx context.Context, name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	param, ok := e.doc.GlobalParameters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}

	if num, isNum := value.(float64); isNum && param != nil {
		clamped := num
		if param.Min != nil && clamped < *param.Min {
			clamped = *param.Min
		}
		if param.Max != nil && clamped > *param.Max {
			clamped = *param.Max
		}
		if clamped != num {
			e.log.Warnf(ctx, "parameter value clamped to declared bounds",
				"parameter", name, "value", num, "clamped", clamped)
		}
		value = clamped
	}

	e.overrides[name] = value
	return nil
}

// buildGlobalEnv layers globals and the schema context into a fresh
// top-level environment. Global parameters come first (overrides winning);
// schema context entries evaluate against the globals, in sorted name order
// so a context entry may reference any global deterministically.
func (e *Engine) buildGlobalEnv(ctx context.Context) *scope.Context {
	env := scope.New()

	names := make([]string, 0, len(e.doc.GlobalParameters))
	for name := range e.doc.GlobalParameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v, ok := e.overrides[name]; ok {
			env.Set(name, v)
			continue
		}
		if param := e.doc.GlobalParameters[name]; param != nil {
			env.Set(name, param.Value)
		}
	}

	ctxNames := make([]string, 0, len(e.doc.Context))
	for name := range e.doc.Context {
		ctxNames = append(ctxNames, name)
	}
	sort.Strings(ctxNames)
	for _, name := range ctxNames {
		env.Set(name, e.eval.Evaluate(ctx, e.doc.Context[name], env))
	}
	return env
}

// dropMissingFonts filters out text build nodes whose font failed the asset
// pre-pass. The failure degrades only the referencing node.
func (e *Engine) dropMissingFonts(ctx context.Context, nodes []*build.Node) []*build.Node {
	out := nodes[:0]
	for _, node := range nodes {
		if node.Kind == build.RawGeometry && node.Shape == "text" && node.Font != "" {
			if _, ok := e.fonts.Font(node.Font); !ok {
				e.log.Warnf(ctx, "font unavailable, skipping text node",
					"path", node.Path.String(), "font", node.Font)
				continue
			}
		}
		node.Children = e.dropMissingFonts(ctx, node.Children)
		out = append(out, node)
	}
	return out
}

// disposeProduced removes every subtree the regenerated declaration put
// directly under prefix: all `name[i]` instances of a repeat or loop plus the
// plain `name` path itself. Disposing only the requested instance would leave
// stale high-index siblings behind when a count shrinks.
func (e *Engine) disposeProduced(ctx context.Context, prefix nodepath.Path, name string) {
	depth := prefix.Depth() + 1
	for _, path := range e.sceneReg.Paths() {
		p, err := nodepath.Parse(path)
		if err != nil || p.Depth() != depth || !p.HasPrefix(prefix) {
			continue
		}
		if p.Segments[depth-1].Name == name {
			e.mat.DisposeSubtree(ctx, p)
		}
	}
}

// disposeAll clears the whole registry ahead of a fresh Execute.
func (e *Engine) disposeAll(ctx context.Context) {
	for _, path := range e.topLevelPaths() {
		if p, err := nodepath.Parse(path); err == nil {
			e.mat.DisposeSubtree(ctx, p)
		}
	}
	if e.root != nil {
		e.target.Dispose(ctx, e.root)
		e.root = nil
	}
}

func (e *Engine) topLevelPaths() []string {
	var tops []string
	for _, path := range e.sceneReg.Paths() {
		if p, err := nodepath.Parse(path); err == nil && p.Depth() == 1 {
			tops = append(tops, path)
		}
	}
	return tops
}

// Diagnostics returns the run's recorded recovery messages.
func (e *Engine) Diagnostics() []diag.Record {
	return e.log.Records()
}
