package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simplify-framework/graphql/diagram"
	"github.com/simplify-framework/graphql/generate"
	"github.com/simplify-framework/graphql/ir"
)

func newRenderCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render views of the compiled schema",
	}
	cmd.AddCommand(newChainCommand(root))
	return cmd
}

// newChainCommand renders resolver chains as Mermaid state diagrams.
func newChainCommand(root *rootOptions) *cobra.Command {
	var (
		outputPath string
		resolver   string
	)

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Generate a Mermaid state diagram of resolver chains",
		Long: `Compile the schema and emit a Mermaid stateDiagram-v2 definition for a resolver
chain. Select the resolver with --resolver, or omit it to render every chain.
Write the result to stdout or to a file via -o/--output.`,
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

			writer := cmd.OutOrStdout()
			if outputPath != "" {
				file, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer file.Close()
				writer = file
			}
			return renderChains(model, resolver, writer)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the generated diagram to a file")
	cmd.Flags().StringVar(&resolver, "resolver", "", "name of the resolver to render")
	return cmd
}

func renderChains(model *ir.ProjectModel, name string, w io.Writer) error {
	var (
		err   error
		found bool
	)
	model.EachOperation(func(_ *ir.Server, _ *ir.EndpointPath, op *ir.ResolverOperation) {
		r := op.Resolver
		if err != nil || (name != "" && r.Name != name) {
			return
		}
		if found {
			if _, err = io.WriteString(w, "\n"); err != nil {
				return
			}
		}
		found = true
		err = diagram.RenderChain(r.Name, r.Chain, w)
	})
	if err != nil {
		return err
	}
	if !found {
		if name != "" {
			return fmt.Errorf("resolver %q not found", name)
		}
		return fmt.Errorf("schema declares no resolvers")
	}
	return nil
}
