package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/th3gh0s8/aura/pkg/errors"
	"github.com/th3gh0s8/aura/pkg/render"
)

// graphCommand creates the graph command for rendering resolved
// dependency graphs.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "graph <package>...",
		Short: "Render the resolved dependency graph",
		Long: `Resolve the given packages and render their dependency graph.

The graph shows every package the resolution touched: buildable packages
as filled boxes, official packages as plain boxes, and already-satisfied
packages dashed and grey. Output is DOT text by default; svg and png are
rendered via Graphviz.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			resolver, cleanup, err := c.newResolver(ctx, cfg, resolverOptions{noCache: noCache})
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := resolver.Resolve(ctx, args)
			if err != nil {
				return err
			}

			dot := render.ToDOT(render.FromResolution(res), render.Options{Detailed: detailed})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.SVG(ctx, dot)
			case "png":
				data, err = render.PNG(ctx, dot)
			default:
				return errors.New(errors.ErrCodeInvalidInput,
					"unknown format %q (want dot, svg, or png)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				if format == "dot" {
					fmt.Print(dot)
					return nil
				}
				output = args[0] + "." + format
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s graph for %s", format, strings.Join(args, ", "))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout for dot, <pkg>.<format> otherwise)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "annotate nodes with classification and dependency counts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable metadata caching")

	return cmd
}
