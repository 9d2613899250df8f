package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/sceneforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flags shared by the subcommands.
type flags struct {
	fontsDir  string
	logFormat string
	logLevel  string
	overrides []string
	dump      bool
}

// New builds the root command. outW receives all command output, which keeps
// entrypoints and tests on the same path.
func New(outW io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "sceneforge",
		Short: "Schema-driven procedural scene interpreter",
		Long: "sceneforge consumes a declarative schema (parameters, expressions," +
			" actions) and materializes the described scene.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(outW)
	root.SetErr(outW)

	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "text",
		"log output format: 'text' or 'json'")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info",
		"logging level: 'debug', 'info', 'warn', or 'error'")

	runCmd := &cobra.Command{
		Use:   "run SCHEMA",
		Short: "Build the scene described by a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(args[0])
			if err != nil {
				return err
			}
			return runApp(outW, cfg)
		},
	}
	runCmd.Flags().StringVar(&f.fontsDir, "fonts-dir", "",
		"directory to load fonts referenced by text actions from")
	runCmd.Flags().StringArrayVar(&f.overrides, "set", nil,
		"global parameter override as name=value (repeatable)")
	runCmd.Flags().BoolVar(&f.dump, "dump", false,
		"print the materialized tree as an indented outline")

	validateCmd := &cobra.Command{
		Use:   "validate SCHEMA",
		Short: "Check a schema document and report every structural problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(args[0])
			if err != nil {
				return err
			}
			return app.Validate(outW, cfg)
		},
	}

	root.AddCommand(runCmd, validateCmd)
	return root
}

// config validates the shared flags and assembles the app configuration.
func (f *flags) config(schemaPath string) (*app.Config, error) {
	logFormat := strings.ToLower(f.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(f.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg, err := app.NewConfig(app.Config{
		SchemaPath: schemaPath,
		FontsDir:   f.fontsDir,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Overrides:  f.overrides,
		Dump:       f.dump,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, nil
}

// runApp constructs and runs the application, recovering startup panics into
// a clean error so the process exits with a message instead of a stack
// trace.
func runApp(outW io.Writer, cfg *app.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()
	a := app.NewApp(outW, cfg)
	return a.Run(context.Background(), cfg)
}
