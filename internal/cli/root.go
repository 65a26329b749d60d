// Package cli implements the jsonforms command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-jsonforms/pkg/fill"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type app struct {
	cfg    Config
	logger *slog.Logger
	driver fill.PromptDriver
	stdin  io.Reader
}

// Option customises the root command.
type Option func(*app)

// WithPromptDriver replaces the terminal prompts used by fill.
func WithPromptDriver(driver fill.PromptDriver) Option {
	return func(a *app) {
		a.driver = driver
	}
}

// NewRootCommand creates the root command.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "jsonforms",
		Short: "Generate and render JSON Schema forms",
		Long: `jsonforms renders JSON Schema data schemas into form descriptions.

A UI schema is generated from the data schema unless one is supplied. Each
control is bound to a value of the data instance and validated against its
subschema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			level, _ := cfg.level()
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), level)
			a.stdin = cmd.InOrStdin()
			return nil
		},
	}
	bindPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		a.newGenerateCommand(),
		a.newRenderCommand(),
		a.newResolveCommand(),
		a.newFillCommand(),
		a.newRenderersCommand(),
		a.newOperationsCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the root command and prints failures in red.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprint(w, "jsonforms version: ")
	fmt.Fprintln(w, Version)
	title.Fprint(w, "Git commit: ")
	fmt.Fprintln(w, GitCommit)
	title.Fprint(w, "Build date: ")
	fmt.Fprintln(w, BuildDate)
	title.Fprint(w, "Go version: ")
	fmt.Fprintln(w, runtime.Version())
}
