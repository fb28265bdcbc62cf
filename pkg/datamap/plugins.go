package datamap

import (
	"context"
	"time"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/observability"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// PluginCall controls one plugin invocation.
type PluginCall struct {
	// Callback receives the layer after the plugin has drawn.
	Callback func(*scene.Layer)
	// NewLayer draws into a fresh layer instead of the one memoised for
	// the plugin name. The fresh layer becomes the memoised one.
	NewLayer bool
}

// Plugin runs the plugin registered under name. Every plugin draws into
// one layer per map, created on first use.
func (m *Map) Plugin(name string, data, opts any, call PluginCall) (layers.Diff, error) {
	p, err := m.registry.Lookup(name)
	if err != nil {
		return layers.Diff{}, err
	}

	layer, ok := m.plugins[name]
	if !ok || call.NewLayer {
		if call.NewLayer {
			layer = m.scene.NewLayer(layers.LayerClass(name))
		} else {
			layer = m.scene.AddLayer(layers.LayerClass(name))
		}
		m.plugins[name] = layer
	}

	start := time.Now()
	diff, err := p.Render(m.rc, layer, data, opts)
	observability.Draw().OnLayer(context.Background(), name, len(diff.Entered), len(diff.Exited), time.Since(start), err)
	if err != nil {
		return layers.Diff{}, err
	}
	m.logger.Debug("drew layer", "plugin", name,
		"entered", len(diff.Entered), "exited", len(diff.Exited), "kept", len(diff.Kept))

	if call.Callback != nil {
		call.Callback(layer)
	}
	return diff, nil
}

// RegisterPlugin adds a plugin under name, replacing any previous one.
func (m *Map) RegisterPlugin(name string, p layers.Plugin) {
	m.registry.Register(name, p)
}

// PluginLayer returns the layer memoised for a plugin.
func (m *Map) PluginLayer(name string) *scene.Layer { return m.plugins[name] }

// Bubbles reconciles the bubble layer against data. opts may be nil, a
// layers.BubblesConfig or a decoded JSON object; set fields override the
// map's bubblesConfig.
func (m *Map) Bubbles(data, opts any) (layers.Diff, error) {
	return m.Plugin("bubbles", data, opts, PluginCall{})
}

// Arcs reconciles the arc layer against data.
func (m *Map) Arcs(data, opts any) (layers.Diff, error) {
	return m.Plugin("arc", data, opts, PluginCall{})
}

// Labels draws region labels.
func (m *Map) Labels(opts layers.LabelOptions) error {
	_, err := m.Plugin("labels", nil, opts, PluginCall{})
	return err
}

// Legend draws the fill legend.
func (m *Map) Legend(opts layers.LegendOptions) error {
	_, err := m.Plugin("legend", nil, opts, PluginCall{})
	return err
}

// Hover simulates the pointer entering a region at pointer.
func (m *Map) Hover(id string, pointer interact.Point) error {
	el, datum, err := m.region(id)
	if err != nil {
		return err
	}
	m.ctl.Enter(el, datum, pointer)
	return nil
}

// Move simulates the pointer moving over a hovered region.
func (m *Map) Move(id string, pointer interact.Point) error {
	el, _, err := m.region(id)
	if err != nil {
		return err
	}
	m.ctl.Move(el, pointer)
	return nil
}

// Unhover simulates the pointer leaving a region. Leaving a region that is
// not hovered does nothing.
func (m *Map) Unhover(id string) error {
	el, _, err := m.region(id)
	if err != nil {
		return err
	}
	m.ctl.Leave(el)
	return nil
}

// Hovered returns the ids of regions currently hovered.
func (m *Map) Hovered() []string {
	var ids []string
	for _, id := range m.rc.Subunits.IDs() {
		if el := m.rc.Subunits.Element(id); el != nil && m.ctl.State(el) == interact.Hovered {
			ids = append(ids, id)
		}
	}
	return ids
}

// Popup returns the tooltip content of a region, or "" when popups are off.
func (m *Map) Popup(id string) (string, error) {
	el, _, err := m.region(id)
	if err != nil {
		return "", err
	}
	return m.ctl.Popup(el), nil
}

func (m *Map) region(id string) (*scene.Element, any, error) {
	el := m.rc.Subunits.Element(id)
	if el == nil {
		return nil, nil, errors.New(errors.ErrCodeNotFound, "no region %q", id)
	}
	f, _ := m.rc.Subunits.Feature(id)
	return el, f, nil
}
