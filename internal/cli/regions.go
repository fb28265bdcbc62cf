package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/geo/topology"
	"github.com/matzehuels/mapsvg/pkg/source"
)

type regionsOpts struct {
	scope          string
	topology       string
	showAntarctica bool
	geojson        bool
	output         string
	noCache        bool
}

// regionsCommand creates the regions command.
func (c *CLI) regionsCommand() *cobra.Command {
	var opts regionsOpts

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the regions of a topology",
		Long: `List the region ids a map can colour, with names and centroids.
With --geojson the regions are written as a GeoJSON FeatureCollection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRegions(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.scope, "scope", projection.ScopeWorld, "topology object to list")
	cmd.Flags().StringVar(&opts.topology, "topology", "", "TopoJSON file or URL (default: embedded world)")
	cmd.Flags().BoolVar(&opts.showAntarctica, "show-antarctica", false, "include Antarctica")
	cmd.Flags().BoolVar(&opts.geojson, "geojson", false, "write GeoJSON instead of a table")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "GeoJSON output file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not cache a fetched topology")

	return cmd
}

func (c *CLI) runRegions(ctx context.Context, opts *regionsOpts) error {
	src, err := c.newSource(opts.noCache, false)
	if err != nil {
		return err
	}
	features, err := loadRegions(ctx, src, opts)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debugf("Loaded %d regions from %q", len(features), opts.scope)

	if !opts.geojson {
		fmt.Println(regionsTable(features))
		fmt.Println(StyleDim.Render(fmt.Sprintf("  %d regions", len(features))))
		return nil
	}

	data, err := json.MarshalIndent(topology.ToGeoJSON(features), "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode geojson")
	}
	if err := writeOutput(opts.output, append(data, '\n')); err != nil {
		return err
	}
	if opts.output != "-" {
		printSuccess("Exported %d regions", len(features))
		printFile(opts.output)
	}
	return nil
}

// loadRegions loads the features of opts.scope, from --topology or the
// embedded world.
func loadRegions(ctx context.Context, src *source.Client, opts *regionsOpts) ([]topology.Feature, error) {
	var (
		t   *topology.Topology
		err error
	)
	if opts.topology != "" {
		t, err = src.Topology(ctx, opts.topology)
	} else {
		t, err = topology.World()
	}
	if err != nil {
		return nil, err
	}

	var exclude map[string]bool
	if !opts.showAntarctica {
		exclude = map[string]bool{"ATA": true}
	}
	return topology.Load(t, opts.scope, exclude)
}

// regionsTable renders features as a bordered table.
func regionsTable(features []topology.Feature) string {
	rows := make([][]string, 0, len(features))
	for _, f := range features {
		centroid := "—"
		if lng, lat, ok := projection.Centroid(f.Geometry); ok {
			centroid = fmt.Sprintf("%s, %s", projection.Num(lat), projection.Num(lng))
		}
		rows = append(rows, []string{f.ID, f.Name, f.Geometry.GeoJSONType(), centroid})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Type", "Lat, Lng").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col >= 2:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}
