package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simplify-framework/graphql/generate"
	"github.com/simplify-framework/graphql/internal/config"
	"github.com/simplify-framework/graphql/internal/ctxlog"
	"github.com/simplify-framework/graphql/normalize"
	"github.com/simplify-framework/graphql/regen"
)

type generateOptions struct {
	*rootOptions
	output   string
	name     string
	module   string
	manifest string
	merge    bool
	override bool
	diff     bool
	jsonOut  bool
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	opts := &generateOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate or regenerate the backend source tree",
		Long: `Compile the schema and write every artifact of the manifest under the output
directory. Existing customizable files are left alone unless --override is set;
with --merge, changed files get conflict markers and are reported for review.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output directory (default from the project environment)")
	flags.StringVar(&opts.name, "name", "", "project name for a new project record (default: schema file name)")
	flags.StringVar(&opts.module, "module", "", "Go module path of the generated backend")
	flags.StringVar(&opts.manifest, "manifest", "", "YAML artifact manifest replacing the default one")
	flags.BoolVar(&opts.merge, "merge", false, "line-merge changed files and mark conflicts")
	flags.BoolVar(&opts.override, "override", false, "rewrite customizable files")
	flags.BoolVar(&opts.diff, "diff", false, "write a .diff file next to every file that needs review")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	return cmd
}

func (o *generateOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	src, err := o.source()
	if err != nil {
		return err
	}

	project, created, err := config.LoadOrCreate(o.projectFile, config.FirstNonEmpty(o.name, o.projectName()), time.Now)
	if err != nil {
		return err
	}
	if o.module != "" {
		project.Module = o.module
	}
	envName, env, err := project.Environment(config.FirstNonEmpty(o.env, o.settings.Env))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	output := config.FirstNonEmpty(o.output, o.settings.Output, env.Output, "backend")
	policy := regen.Policy{
		Merge:    pick(flags.Changed("merge"), o.merge, env.Merge),
		Override: pick(flags.Changed("override"), o.override, env.Override),
		Diff:     pick(flags.Changed("diff"), o.diff, env.Diff),
	}

	manifest := generate.DefaultManifest()
	if path := config.FirstNonEmpty(o.manifest, env.Manifest); path != "" {
		if manifest, err = loadManifest(path); err != nil {
			return err
		}
	}
	renderer, err := generate.NewRenderer()
	if err != nil {
		return err
	}

	logger.Info("generating",
		"project", project.Name, "env", envName, "output", output,
		"merge", policy.Merge, "override", policy.Override, "diff", policy.Diff)

	createdAt := project.CreatedAt
	report, err := generate.New(manifest, renderer).Run(ctx, src, output, generate.Config{
		Info: normalize.Info{
			Name:   project.Name,
			ID:     project.ID,
			Module: project.Module,
		},
		Policy: policy,
		Clock:  func() time.Time { return createdAt },
	})
	if report != nil {
		if o.jsonOut {
			if err := report.WriteJSON(cmd.OutOrStdout()); err != nil {
				return err
			}
		} else {
			report.Write(cmd.OutOrStdout())
		}
	}
	if err != nil {
		return err
	}

	if err := project.Save(o.projectFile); err != nil {
		return err
	}
	logger.Info("saved project record", "path", o.projectFile, "id", project.ID, "new", created)
	if report.NeedsReview() && !o.jsonOut {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Resolve the conflict markers in the files marked for review.")
	}
	return nil
}

// pick prefers an explicitly set flag over the environment setting.
func pick(changed, flag, env bool) bool {
	if changed {
		return flag
	}
	return env
}

func loadManifest(path string) (generate.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return generate.LoadManifest(f)
}
