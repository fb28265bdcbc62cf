package datamap

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/geo/topology"
	"github.com/matzehuels/mapsvg/pkg/observability"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
	"github.com/matzehuels/mapsvg/pkg/render/sink"
	"github.com/matzehuels/mapsvg/pkg/source"
)

// SVGClass is the class of the root svg element.
const SVGClass = "datamap"

// Map is a drawn map. It is not safe for concurrent use: callers that
// share a Map between goroutines must serialise access.
type Map struct {
	opts     Options
	scene    *scene.Scene
	proj     *projection.Handle
	ctl      *interact.Controller
	rc       *layers.Context
	features []topology.Feature
	registry layers.Registry
	plugins  map[string]*scene.Layer
	source   *source.Client
	logger   *log.Logger
}

// Option configures how New builds a Map.
type Option func(*Map)

// WithSource sets the client used for geographyConfig.dataUrl and dataUrl.
func WithSource(c *source.Client) Option {
	return func(m *Map) {
		if c != nil {
			m.source = c
		}
	}
}

// WithRegistry replaces the built-in plugin registry.
func WithRegistry(r layers.Registry) Option {
	return func(m *Map) {
		if r != nil {
			m.registry = r
		}
	}
}

// New draws a map: it applies defaults, ensures the base stylesheet,
// configures the projection, resolves and loads the topology, draws one
// path per region with hover behaviour attached, applies remote region
// data and finally calls opts.Done.
func New(ctx context.Context, opts Options, options ...Option) (*Map, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	m := &Map{
		opts:     opts,
		scene:    scene.New(opts.Width, opts.Height, SVGClass),
		registry: layers.Builtins(),
		plugins:  map[string]*scene.Layer{},
		logger:   opts.Logger,
	}
	for _, o := range options {
		o(m)
	}
	if m.source == nil {
		m.source = source.NewClient(source.WithLogger(m.logger))
	}

	if !opts.DisableDefaultStyles {
		m.scene.EnsureStyles(sink.BaseStylesName, sink.BaseStyles)
	}

	start := time.Now()
	observability.Draw().OnDrawStart(ctx, opts.Scope, opts.Projection)
	err := m.draw(ctx)
	observability.Draw().OnDrawComplete(ctx, opts.Scope, len(m.features), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("drew map",
		"scope", opts.Scope,
		"projection", m.proj.Algorithm(),
		"regions", len(m.features),
		"duration", time.Since(start))

	if opts.Done != nil {
		opts.Done(m)
	}
	return m, nil
}

func (m *Map) draw(ctx context.Context) error {
	o := &m.opts

	proj, err := projection.Configure(o.Width, o.Height, o.Scope, o.Projection)
	if err != nil {
		return err
	}
	m.proj = proj

	topo, remote, err := m.resolve(ctx)
	if err != nil {
		return err
	}

	var exclude map[string]bool
	if o.GeographyConfig.HideAntarctica != nil && *o.GeographyConfig.HideAntarctica {
		exclude = map[string]bool{"ATA": true}
	}
	features, err := topology.Load(topo, o.Scope, exclude)
	if err != nil {
		return err
	}
	m.features = features

	m.ctl = interact.New(m.scene)
	m.rc = &layers.Context{
		Scene:         m.scene,
		Projection:    proj,
		Controller:    m.ctl,
		Fills:         o.Fills,
		BubblesConfig: o.BubblesConfig,
		ArcConfig:     o.ArcConfig,
	}
	m.rc.Subunits = layers.NewSubunits(m.rc)
	m.rc.Subunits.Render(features, map[string]map[string]any(o.Data), o.Fills, o.GeographyConfig)

	if o.GeographyConfig.PopupOnHover != nil && *o.GeographyConfig.PopupOnHover ||
		o.BubblesConfig.PopupOnHover != nil && *o.BubblesConfig.PopupOnHover {
		m.scene.EnsureTooltip(interact.TooltipClass)
	}

	if remote != nil {
		changed := m.UpdateChoropleth(remote)
		m.logger.Debug("applied remote data", "url", o.DataURL, "regions", len(remote), "changed", len(changed))
	}
	return nil
}

// resolve returns the topology to draw and any remote region data.
// Topology precedence: Options.Topology, geographyConfig.dataUrl, then the
// embedded world topology.
func (m *Map) resolve(ctx context.Context) (*topology.Topology, map[string]any, error) {
	o := &m.opts
	req := source.Request{Data: o.DataURL, DataType: o.DataType}

	topo := o.Topology
	if topo == nil && o.GeographyConfig.DataURL != "" {
		req.Topology = o.GeographyConfig.DataURL
	}
	if topo == nil && req.Topology == "" {
		if o.Scope != projection.ScopeWorld {
			return nil, nil, errors.New(errors.ErrCodeUnsupportedScope,
				"no embedded topology for scope %q: set geographyConfig.dataUrl", o.Scope)
		}
		w, err := topology.World()
		if err != nil {
			return nil, nil, err
		}
		topo = w
	}

	if req.Topology == "" && req.Data == "" {
		return topo, nil, nil
	}
	res, err := m.source.Load(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if res.Topology != nil {
		topo = res.Topology
	}
	return topo, res.Data, nil
}

// Options returns the options the map was drawn with, defaults applied.
func (m *Map) Options() Options { return m.opts }

// Scene returns the scene graph.
func (m *Map) Scene() *scene.Scene { return m.scene }

// Projection returns the projection handle of the draw.
func (m *Map) Projection() *projection.Handle { return m.proj }

// Controller returns the hover controller.
func (m *Map) Controller() *interact.Controller { return m.ctl }

// Features returns the drawn region features.
func (m *Map) Features() []topology.Feature { return m.features }

// Regions returns the ids of the drawn regions, sorted.
func (m *Map) Regions() []string { return m.rc.Subunits.IDs() }

// Data returns the stored entry of a region.
func (m *Map) Data(id string) (Entry, bool) { return m.rc.Subunits.Data(id) }

// Fill returns the current fill of a region's path.
func (m *Map) Fill(id string) (string, bool) {
	el := m.rc.Subunits.Element(id)
	if el == nil {
		return "", false
	}
	return el.Style("fill")
}

// LatLngToXY projects a coordinate onto the canvas. ok is false when the
// point falls outside the projection.
func (m *Map) LatLngToXY(lat, lng float64) (x, y float64, ok bool) {
	return m.proj.Project(lng, lat)
}

// UpdateChoropleth recolours regions. Each value is a colour string, or an
// object whose "color" or "fillKey" selects the colour; objects are merged
// into the stored entry. It returns the ids whose paths were recoloured.
func (m *Map) UpdateChoropleth(update map[string]any) []string {
	changed := m.rc.Subunits.Recolor(update, m.rc.Fills)
	observability.Draw().OnChoropleth(context.Background(), len(changed))
	return changed
}
