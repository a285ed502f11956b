package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/simplify-framework/graphql/generate"
	"github.com/simplify-framework/graphql/normalize"
)

func newInspectCommand(root *rootOptions) *cobra.Command {
	var normalized bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the compiled model as JSON",
		Long: `Compile the schema and print the intermediate model as JSON. With
--normalized, print the render context the templates receive instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := root.source()
			if err != nil {
				return err
			}
			model, err := generate.Compile(cmd.Context(), src, generate.Config{})
			if err != nil {
				return err
			}
			project := normalize.Normalize(model, normalize.Info{Name: root.projectName()})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if normalized {
				return enc.Encode(project)
			}
			return enc.Encode(model)
		},
	}
	cmd.Flags().BoolVar(&normalized, "normalized", false, "print the normalized render context")
	return cmd
}
