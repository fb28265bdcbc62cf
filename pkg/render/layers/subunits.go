package layers

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/geo/topology"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// Subunits draws one path per region and keeps the region data map that
// choropleth updates merge into.
//
// Region ids are not guaranteed unique (several world features share
// "-99"), so elements are keyed by id plus an occurrence suffix and every
// element of an id is recoloured together.
type Subunits struct {
	rc       *Context
	layer    *scene.Layer
	byID     map[string][]*scene.Element
	features map[string]topology.Feature
	data     map[string]map[string]any
	config   GeographyConfig
}

// NewSubunits returns the region layer for rc. Nothing is drawn until
// Render is called.
func NewSubunits(rc *Context) *Subunits {
	return &Subunits{
		rc:       rc,
		byID:     map[string][]*scene.Element{},
		features: map[string]topology.Feature{},
		data:     map[string]map[string]any{},
	}
}

// Layer returns the scene layer holding the region paths.
func (s *Subunits) Layer() *scene.Layer { return s.layer }

// Render draws features into the datamaps-subunits layer, reusing the layer
// and any existing path of the same region. A region's fill comes from
// fills[data[id].fillKey], falling back to defaultFill.
func (s *Subunits) Render(features []topology.Feature, data map[string]map[string]any, fills Fills, config GeographyConfig) {
	config.SetDefaults()
	s.config = config
	s.layer = s.rc.Scene.AddLayer(SubunitsClass)
	for id, entry := range data {
		s.data[id] = entry
	}

	seen := map[string]int{}
	for _, f := range features {
		d := s.rc.Projection.ShapeOf(f.Geometry)
		if d == "" {
			continue
		}
		key := f.ID
		if n := seen[f.ID]; n > 0 {
			key = f.ID + "#" + strconv.Itoa(n)
		}
		seen[f.ID]++

		el, created := s.layer.Ensure("path", key)
		if created {
			s.byID[f.ID] = append(s.byID[f.ID], el)
		}
		if _, ok := s.features[f.ID]; !ok {
			s.features[f.ID] = f
		}
		el.Datum = f

		el.SetAttr("d", d)
		el.SetAttr("class", "datamaps-subunit "+f.ID)
		s.setInfo(el, f.ID)

		var fillKey string
		if entry := s.data[f.ID]; entry != nil {
			fillKey, _ = entry["fillKey"].(string)
		}
		el.SetStyle("fill", fills.Resolve(fillKey))
		el.SetStyle("stroke-width", num(floatOf(config.BorderWidth)))
		el.SetStyle("stroke", config.BorderColor)

		if isTrue(config.HighlightOnHover) || isTrue(config.PopupOnHover) {
			s.rc.Controller.Bind(s.layer, el, config.binding())
		}
	}
}

func (s *Subunits) setInfo(el *scene.Element, id string) {
	entry, ok := s.data[id]
	if !ok {
		el.RemoveAttr(interact.AttrInfo)
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	el.SetAttr(interact.AttrInfo, string(raw))
}

// Recolor applies a choropleth update and returns the ids whose paths
// changed colour, sorted.
//
// Each value is a colour string, or an object carrying "color" or
// "fillKey". Object values are merged into the stored region data: the
// update's fields win and fields it lacks keep their stored value. Empty
// ids are skipped; ids with no path only update the data map. An
// unresolvable colour falls back to defaultFill. Fill transitions of an
// earlier Recolor are dropped.
func (s *Subunits) Recolor(update map[string]any, fills Fills) []string {
	if s.layer != nil {
		s.layer.Settle()
	}
	ids := make([]string, 0, len(update))
	for id := range update {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var changed []string
	for _, id := range ids {
		v := update[id]
		color := fills.Color(v)
		if color == "" {
			color = fills.Default()
		}

		if obj, ok := v.(map[string]any); ok {
			s.data[id] = mergeDefaults(obj, s.data[id])
		}

		els := s.byID[id]
		for _, el := range els {
			s.setInfo(el, id)
			from, _ := el.Style("fill")
			el.Animate(scene.Transition{
				Property: "fill",
				Style:    true,
				From:     from,
				To:       color,
				Duration: fillTransition,
			})
		}
		if len(els) > 0 {
			changed = append(changed, id)
		}
	}
	return changed
}

// mergeDefaults returns a copy of update with fields it lacks (or holds as
// null) taken from existing. The update is the target and stored fields
// only fill its gaps; this precedence is intended.
func mergeDefaults(update, existing map[string]any) map[string]any {
	out := make(map[string]any, len(update)+len(existing))
	for k, v := range update {
		out[k] = v
	}
	for k, v := range existing {
		if cur, ok := out[k]; !ok || cur == nil {
			out[k] = v
		}
	}
	return out
}

// Data returns the stored entry of a region.
func (s *Subunits) Data(id string) (map[string]any, bool) {
	entry, ok := s.data[id]
	return entry, ok
}

// Elements returns the paths drawn for a region id.
func (s *Subunits) Elements(id string) []*scene.Element { return s.byID[id] }

// Element returns the first path of a region id, or nil.
func (s *Subunits) Element(id string) *scene.Element {
	if els := s.byID[id]; len(els) > 0 {
		return els[0]
	}
	return nil
}

// IDs returns the drawn region ids, sorted.
func (s *Subunits) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Feature returns the feature drawn for id.
func (s *Subunits) Feature(id string) (topology.Feature, bool) {
	f, ok := s.features[id]
	return f, ok
}

// Centroid returns the projected centroid of a region.
func (s *Subunits) Centroid(id string) (x, y float64, ok bool) {
	f, found := s.features[id]
	if !found {
		return 0, 0, false
	}
	return s.rc.Projection.CentroidOf(f.Geometry)
}

// Config returns the geography configuration of the last render.
func (s *Subunits) Config() GeographyConfig { return s.config }

// Projection returns the projection the regions were drawn with.
func (s *Subunits) Projection() *projection.Handle { return s.rc.Projection }
