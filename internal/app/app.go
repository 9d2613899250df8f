package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/sceneforge/internal/assets"
	"github.com/vk/sceneforge/internal/ctxlog"
	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/engine"
	"github.com/vk/sceneforge/internal/memtree"
	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/schema"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	doc      *schema.Document
	engine   *engine.Engine
	diag     *diag.Log
	tree     *memtree.Tree
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry, and
// engine. A schema that cannot be loaded or validated is a fatal startup
// error and panics; entrypoints recover it into a clean exit.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	doc, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		panic(fmt.Errorf("failed to load schema: %w", err))
	}
	logger.Debug("Schema document loaded.", "path", cfg.SchemaPath, "version", doc.Version)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	log := diag.NewLog()
	tree := memtree.New()

	var opts []engine.Option
	if cfg.FontsDir != "" {
		opts = append(opts, engine.WithFontLoader(&assets.FileLoader{Dir: cfg.FontsDir}))
	}
	eng, err := engine.New(doc, reg, tree, log, opts...)
	if err != nil {
		panic(fmt.Errorf("failed to build engine: %w", err))
	}
	logger.Debug("Engine constructed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		doc:      doc,
		engine:   eng,
		diag:     log,
		tree:     tree,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Run executes the full pipeline and prints the scene summary.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	overrides, err := parseOverrides(cfg.Overrides)
	if err != nil {
		return err
	}
	for name, value := range overrides {
		if err := a.engine.SetParameter(ctx, name, value); err != nil {
			return fmt.Errorf("applying override: %w", err)
		}
	}

	a.logger.Info("🏗️ Building scene...")
	if _, err := a.engine.Execute(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Build finished.")

	fmt.Fprintln(a.outW, a.engine.Summary().String())
	if cfg.Dump {
		a.engine.Dump(a.outW)
	}
	return nil
}

// Validate loads a schema document and reports every structural problem
// found. It never constructs an engine, so even a badly broken document
// produces a report instead of a startup panic.
func Validate(outW io.Writer, cfg *Config) error {
	doc, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		fmt.Fprintf(outW, "problem: %v\n", err)
		return err
	}
	for _, warning := range doc.Warnings() {
		fmt.Fprintf(outW, "warning: %v\n", warning)
	}
	problems := doc.Validate()
	if len(problems) == 0 {
		fmt.Fprintln(outW, "schema is valid")
		return nil
	}
	for _, problem := range problems {
		fmt.Fprintf(outW, "problem: %v\n", problem)
	}
	return fmt.Errorf("%w: %d problems found", schema.ErrInvalidDocument, len(problems))
}
