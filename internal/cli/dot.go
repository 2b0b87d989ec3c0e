package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roomgraph/pkg/render"
	"github.com/matzehuels/roomgraph/pkg/render/nodelink"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// dotCommand creates the "dot" command.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		scale    float64
	)

	cmd := &cobra.Command{
		Use:   "dot <graph>",
		Short: "Render a graph with Graphviz",
		Long: `Render a graph as Graphviz DOT, SVG, PDF or PNG.

PDF and PNG output require rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if !slices.Contains(render.Formats, format) {
				return fmt.Errorf("invalid format: %s (must be one of %s)", format, strings.Join(render.Formats, ", "))
			}
			if format != "dot" && format != "svg" && output == "" {
				return fmt.Errorf("%s output needs --output", format)
			}

			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			var dot string
			err = sess.svc.View(cmd.Context(), args[0], func(g *roomgraph.Graph) error {
				dot = nodelink.ToDOT(g, nodelink.Options{Detailed: detailed})
				return nil
			})
			if err != nil {
				return err
			}

			data, err := renderFormat(cmd.Context(), dot, format, scale)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered %s", args[0])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: "+strings.Join(render.Formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout for dot and svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with full IDs and presentation data")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG scale factor")
	return cmd
}

// renderFormat turns DOT source into the requested format.
func renderFormat(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	if format == "dot" {
		return []byte(dot), nil
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()

	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return nil, fmt.Errorf("render svg: %w", err)
	}

	var data []byte
	switch format {
	case "svg":
		data = svg
	case "pdf":
		data, err = render.ToPDF(ctx, svg)
	case "png":
		data, err = render.ToPNG(ctx, svg, scale)
	}
	if err != nil {
		spinner.StopWithError("Conversion failed")
		return nil, fmt.Errorf("convert to %s: %w", format, err)
	}
	spinner.Stop()
	return data, nil
}
