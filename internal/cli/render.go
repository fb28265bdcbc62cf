package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapsvg/pkg/config"
	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
	"github.com/matzehuels/mapsvg/pkg/render/sink"
	"github.com/matzehuels/mapsvg/pkg/source"
)

// defaultBase names output files when neither --output nor a map file is
// given.
const defaultBase = "map"

// renderOpts holds the flags shared by render and explore. Flags override
// the values of a map file.
type renderOpts struct {
	output  string   // output file, base path for several formats, or "-" for stdout
	formats []string // svg (default), json, png, pdf

	scope      string
	projection string
	width      float64
	height     float64
	fills      map[string]string

	data     string // region data file or URL
	dataType string // json or csv
	topology string // topology file or URL

	bubbles string // JSON or YAML file with a bubble array
	arcs    string // JSON or YAML file with an arc array

	labels         bool
	legend         bool
	legendTitle    string
	showAntarctica bool
	static         bool // no hover script or transitions

	noCache bool
	refresh bool
}

// mapFlags registers the flags that describe a map.
func mapFlags(cmd *cobra.Command, opts *renderOpts) {
	f := cmd.Flags()
	f.StringVar(&opts.scope, "scope", "", "world (default), usa, or an object of --topology")
	f.StringVar(&opts.projection, "projection", "", "world projection: equirectangular (default), mercator, orthographic, ...")
	f.Float64Var(&opts.width, "width", 0, "canvas width (default 960)")
	f.Float64Var(&opts.height, "height", 0, "canvas height (default 600)")
	f.StringToStringVar(&opts.fills, "fill", nil, "fill key=colour, repeatable (e.g. --fill HIGH=#d73027)")
	f.StringVar(&opts.data, "data", "", "region data file or URL")
	f.StringVar(&opts.dataType, "data-type", "", "region data format: json (default), csv")
	f.StringVar(&opts.topology, "topology", "", "TopoJSON file or URL replacing the embedded world")
	f.StringVar(&opts.bubbles, "bubbles", "", "JSON or YAML file with bubbles")
	f.StringVar(&opts.arcs, "arcs", "", "JSON or YAML file with arcs")
	f.BoolVar(&opts.labels, "labels", false, "label regions with their ids")
	f.BoolVar(&opts.legend, "legend", false, "draw a fill legend")
	f.StringVar(&opts.legendTitle, "legend-title", "", "legend title (implies --legend)")
	f.BoolVar(&opts.showAntarctica, "show-antarctica", false, "keep Antarctica on world maps")
	f.BoolVar(&opts.noCache, "no-cache", false, "do not cache fetched topologies and data")
	f.BoolVar(&opts.refresh, "refresh", false, "refetch remote sources even if cached")
	completeFlags(cmd)
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [map-file]",
		Short: "Render a map to SVG, JSON, PNG or PDF",
		Long: `Render a map described by flags, a map file (TOML, YAML or JSON), or both.
Flags override the map file.

Examples:
  mapsvg render --fill HIGH=#d73027 --data votes.csv --data-type csv -o votes.svg
  mapsvg render election.toml -f svg,png
  mapsvg render --scope usa --topology usa.topo.json --labels --static`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format")
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, base path for several formats, or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&opts.static, "static", false, "omit hover script and transitions")
	mapFlags(cmd, &opts)

	return cmd
}

// validFormats is the set of supported output formats.
var validFormats = func() map[string]bool {
	m := make(map[string]bool, len(datamap.Formats))
	for _, f := range datamap.Formats {
		m[f] = true
	}
	return m
}()

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", f, strings.Join(datamap.Formats, ", "))
		}
	}
	return nil
}

// basePath derives the output path without extension. An empty output uses
// the input name, or "map" without input. Known format extensions are
// stripped from output.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// openOutput opens path for writing, or stdout for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	src, err := c.newSource(opts.noCache, opts.refresh)
	if err != nil {
		return err
	}

	sp := newSpinner(ctx, os.Stderr, "Drawing map")
	sp.Start()
	defer sp.Stop()

	prog := newProgress(logger)
	m, err := drawMap(ctx, src, input, opts)
	if err != nil {
		sp.StopWithError("Draw failed")
		return err
	}
	prog.done(fmt.Sprintf("Drew %s map", m.Options().Scope))

	base := basePath(opts.output, input)
	var paths []string
	for _, format := range opts.formats {
		path := base + "." + format
		if opts.output == "-" {
			path = "-"
		}
		sp.Update("Rendering " + format)
		data, err := renderFormat(ctx, m, format, opts.static)
		if err != nil {
			sp.StopWithError("Render failed")
			return fmt.Errorf("%s: %w", format, err)
		}
		logger.Debugf("Generated %s: %d bytes", format, len(data))
		if err := writeOutput(path, data); err != nil {
			return err
		}
		paths = append(paths, path)
	}
	sp.Stop()

	if opts.output == "-" {
		return nil
	}
	printSuccess("Rendered %s map", m.Options().Scope)
	for _, p := range paths {
		printFile(p)
	}
	fmt.Println(mapStats(len(m.Regions()), layerCounts(m), pluginOrder))
	if input != "" {
		fmt.Println()
		printNextStep("Explore it", "mapsvg explore "+input)
	}
	return nil
}

// drawMap loads the map file (if any), applies flag overrides and draws.
func drawMap(ctx context.Context, src *source.Client, input string, opts *renderOpts) (*datamap.Map, error) {
	f := &config.File{}
	if input != "" {
		loaded, err := config.Load(input)
		if err != nil {
			return nil, err
		}
		f = loaded
	}
	if err := applyFlags(ctx, src, f, opts); err != nil {
		return nil, err
	}
	f.Map.Logger = loggerFromContext(ctx)
	return f.Draw(ctx, datamap.WithSource(src))
}

// applyFlags overlays the set flags onto f.
func applyFlags(ctx context.Context, src *source.Client, f *config.File, opts *renderOpts) error {
	mo := &f.Map
	if opts.scope != "" {
		mo.Scope = opts.scope
	}
	if opts.projection != "" {
		mo.Projection = opts.projection
	}
	if opts.width != 0 {
		mo.Width = opts.width
	}
	if opts.height != 0 {
		mo.Height = opts.height
	}
	if len(opts.fills) > 0 {
		if mo.Fills == nil {
			mo.Fills = datamap.Fills{}
		}
		for k, v := range opts.fills {
			mo.Fills[k] = v
		}
	}
	if opts.data != "" {
		mo.DataURL = opts.data
	}
	if opts.dataType != "" {
		mo.DataType = opts.dataType
	}
	if opts.topology != "" {
		mo.GeographyConfig.DataURL = opts.topology
	}
	if opts.showAntarctica {
		hide := false
		mo.GeographyConfig.HideAntarctica = &hide
	}
	if opts.bubbles != "" {
		if err := loadList(ctx, src, opts.bubbles, &f.Bubbles); err != nil {
			return err
		}
	}
	if opts.arcs != "" {
		if err := loadList(ctx, src, opts.arcs, &f.Arcs); err != nil {
			return err
		}
	}
	if opts.labels && f.Labels == nil {
		f.Labels = &layers.LabelOptions{}
	}
	if opts.legend || opts.legendTitle != "" {
		if f.Legend == nil {
			f.Legend = &layers.LegendOptions{}
		}
		if opts.legendTitle != "" {
			f.Legend.LegendTitle = opts.legendTitle
		}
	}
	return nil
}

// loadList fetches a bubble or arc list from a file or URL. The format
// follows the extension, JSON when it has none.
func loadList(ctx context.Context, src *source.Client, loc string, v any) error {
	data, err := src.Fetch(ctx, loc)
	if err != nil {
		return err
	}
	format, err := config.FormatOf(loc)
	if err != nil {
		format = config.FormatJSON
	}
	if err := config.Decode(data, format, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "load %s", loc)
	}
	return nil
}

// renderFormat renders m in format. Static SVG drops the hover script and
// transitions.
func renderFormat(ctx context.Context, m *datamap.Map, format string, static bool) ([]byte, error) {
	if static && format == "svg" {
		return m.SVG(sink.WithStatic()), nil
	}
	return m.Render(ctx, format, !static)
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// pluginOrder lists the layers reported after a render.
var pluginOrder = []string{"bubbles", "arc", "labels", "legend"}

// layerCounts counts the live elements of each drawn plugin layer.
func layerCounts(m *datamap.Map) map[string]int {
	counts := make(map[string]int)
	for _, name := range pluginOrder {
		if l := m.PluginLayer(name); l != nil {
			counts[name] = l.Len()
		}
	}
	return counts
}
