// Package layers draws map content into a scene.
//
// [Subunits] owns the region paths and their choropleth colours. The other
// layers are [Plugin] implementations looked up by name in a [Registry]:
// bubbles and arcs reconcile their data against the previous call by
// canonical JSON identity, so repeated calls only add and remove what
// changed. Labels and the legend redraw from scratch.
//
// All layers share one [Context] per map: the scene, the projection, the
// hover controller, the fill registry and the region layer.
package layers

import (
	"sort"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// Layer classes used by the built-in layers.
const (
	SubunitsClass = "datamaps-subunits"
	BubblesClass  = "bubbles"
	ArcsClass     = "arc"
	LabelsClass   = "labels"
	LegendClass   = "datamaps-legend"
)

// Context is what a layer needs to draw.
type Context struct {
	Scene      *scene.Scene
	Projection *projection.Handle
	Controller *interact.Controller
	Fills      Fills
	Subunits   *Subunits

	// BubblesConfig and ArcConfig are the map-level settings that plugin
	// options are laid over.
	BubblesConfig BubblesConfig
	ArcConfig     ArcConfig
}

// Diff reports which keys entered, left and stayed in a keyed layer.
type Diff struct {
	Entered []string `json:"entered"`
	Exited  []string `json:"exited"`
	Kept    []string `json:"kept"`
}

// Empty reports whether the call changed nothing.
func (d Diff) Empty() bool { return len(d.Entered) == 0 && len(d.Exited) == 0 }

// Plugin draws one kind of content into a layer. opts is the plugin's own
// options value (or nil for defaults).
type Plugin interface {
	Render(rc *Context, layer *scene.Layer, data any, opts any) (Diff, error)
}

// PluginFunc adapts a function to [Plugin].
type PluginFunc func(rc *Context, layer *scene.Layer, data any, opts any) (Diff, error)

func (f PluginFunc) Render(rc *Context, layer *scene.Layer, data any, opts any) (Diff, error) {
	return f(rc, layer, data, opts)
}

// Registry maps plugin names to implementations.
type Registry map[string]Plugin

// Builtins returns a registry holding bubbles, arc, labels and legend.
func Builtins() Registry {
	return Registry{
		"bubbles": PluginFunc(renderBubbles),
		"arc":     PluginFunc(renderArcs),
		"labels":  PluginFunc(renderLabels),
		"legend":  PluginFunc(renderLegend),
	}
}

// Lookup returns the plugin registered under name.
func (r Registry) Lookup(name string) (Plugin, error) {
	p, ok := r[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no plugin named %q (have %v)", name, r.Names())
	}
	return p, nil
}

// Register adds or replaces a plugin.
func (r Registry) Register(name string, p Plugin) { r[name] = p }

// Names returns the registered names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LayerClass returns the class of the scene layer a plugin draws into.
func LayerClass(name string) string {
	switch name {
	case "bubbles":
		return BubblesClass
	case "arc":
		return ArcsClass
	case "labels":
		return LabelsClass
	case "legend":
		return LegendClass
	}
	return name
}
