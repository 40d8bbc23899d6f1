package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/transitdraw/transitmap/pkg/config"
	"github.com/transitdraw/transitmap/pkg/graph/geojson"
	"github.com/transitdraw/transitmap/pkg/octi"
	"github.com/transitdraw/transitmap/pkg/optgraph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
	"github.com/transitdraw/transitmap/pkg/topo"
)

// newDotCmd creates the "dot" command: a --grid-preview style debug
// export of the optimization graph (before schematization) or the
// final grid layout (after), rendered via Graphviz.
func newDotCmd() *cobra.Command {
	var (
		output      string
		configPath  string
		gridPreview bool
	)

	cmd := &cobra.Command{
		Use:   "dot [exchange.json]",
		Short: "Export the optimization graph or grid layout as Graphviz dot/SVG (debug)",
		Long: `dot loads a GeoJSON exchange document, contracts it into the optimization
graph, and exports either the bare OptGraph (default) or the grid
occupancy after full schematization (--grid-preview), useful when
diagnosing a LayoutInfeasible failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDot(cmd, args[0], output, configPath, gridPreview)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output SVG file (DOT text to stdout if empty)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "transitmap.toml", "configuration file")
	cmd.Flags().BoolVar(&gridPreview, "grid-preview", false, "export the schematized grid layout instead of the bare optimization graph")

	return cmd
}

func runDot(cmd *cobra.Command, input, output, configPath string, gridPreview bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return pipelineerr.Wrap(pipelineerr.CodeMalformedInput, err, "open input %s", input)
	}
	defer f.Close()

	g, err := geojson.Load(f, 1e-3)
	if err != nil {
		return err
	}
	if err := topo.Build(g, cfg.Topology()); err != nil {
		return err
	}
	og, err := optgraph.Contract(g)
	if err != nil {
		return err
	}

	var svg []byte
	if gridPreview {
		layout, err := octi.Schematize(g, og, cfg.Schematize())
		if err != nil {
			return err
		}
		svg, err = layout.RenderSVG(og)
		if err != nil {
			return pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "render grid preview")
		}
	} else {
		if output == "" {
			cmd.Println(og.ToDOT())
			return nil
		}
		svg, err = og.RenderSVG()
		if err != nil {
			return pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "render optimization graph")
		}
	}

	if output == "" {
		cmd.Println(string(svg))
		return nil
	}
	if err := os.WriteFile(output, svg, 0644); err != nil {
		return pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "write output %s", output)
	}
	printSuccess("Dot export complete")
	printFile(output)
	return nil
}
