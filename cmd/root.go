// Package cmd implements the simplify-graphql command line.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simplify-framework/graphql/generate"
	"github.com/simplify-framework/graphql/internal/config"
	"github.com/simplify-framework/graphql/internal/ctxlog"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	input       string
	logLevel    string
	logFormat   string
	env         string
	projectFile string
	envFiles    []string

	settings config.Settings
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "simplify-graphql",
		Short: "Generate a Go backend from an annotated GraphQL schema",
		Long: `simplify-graphql compiles a GraphQL schema annotated with server, endpoint,
resolver, data source and event directives, and generates a Go backend whose
resolvers run as step chains. Hand edits survive regeneration: customizable
files are kept and, with --merge, changed files get conflict markers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.LoadSettings(opts.envFiles...)
			if err != nil {
				return err
			}
			opts.settings = settings

			level := opts.logLevel
			if !cmd.Flags().Changed("log-level") {
				level = config.FirstNonEmpty(settings.LogLevel, level)
			}
			format := opts.logFormat
			if !cmd.Flags().Changed("log-format") {
				format = config.FirstNonEmpty(settings.LogFormat, format)
			}
			logger := ctxlog.New(level, format, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.input, "input", "i", "", "annotated GraphQL schema file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&opts.env, "env", "", "environment of the project record to use")
	flags.StringVar(&opts.projectFile, "project", config.FileName, "project record file")
	flags.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files read for SIMPLIFY_* settings")

	cmd.AddCommand(
		newGenerateCommand(opts),
		newCheckCommand(opts),
		newInspectCommand(opts),
		newRenderCommand(opts),
	)
	return cmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// source reads the schema named by --input.
func (o *rootOptions) source() (generate.Source, error) {
	if o.input == "" {
		return generate.Source{}, fmt.Errorf("an input schema is required (--input)")
	}
	b, err := os.ReadFile(o.input)
	if err != nil {
		return generate.Source{}, fmt.Errorf("failed to read schema: %w", err)
	}
	return generate.Source{Name: o.input, Content: string(b)}, nil
}

// projectName derives a project name from the input file name.
func (o *rootOptions) projectName() string {
	base := filepath.Base(o.input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
