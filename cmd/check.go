package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simplify-framework/graphql/generate"
	"github.com/simplify-framework/graphql/ir"
)

func newCheckCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile the schema without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := root.source()
			if err != nil {
				return err
			}
			model, err := generate.Compile(cmd.Context(), src, generate.Config{})
			if err != nil {
				return err
			}

			ops := 0
			model.EachOperation(func(*ir.Server, *ir.EndpointPath, *ir.ResolverOperation) { ops++ })
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d servers, %d operations, %d data sources, %d events)\n",
				src.Name, model.Servers.Len(), ops, model.DataSources.Len(), model.Events.Len())
			return nil
		},
	}
}
