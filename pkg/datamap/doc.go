// Package datamap draws choropleth, bubble and arc maps.
//
// A [Map] owns a scene graph with one path per region of a TopoJSON
// topology. [New] draws it; after that the map is updated in place:
//
//	m, err := datamap.New(ctx, datamap.Options{
//	    Fills: datamap.Fills{"defaultFill": "#ABDDA4", "low": "#FEE08B"},
//	    Data:  datamap.RegionData{"USA": {"fillKey": "low"}},
//	})
//	m.UpdateChoropleth(map[string]any{"CAN": "#FC8D59"})
//	m.Bubbles([]layers.Bubble{{Centered: "BRA", Radius: 12}}, nil)
//	svg := m.SVG(sink.WithInteraction())
//
// # Layers
//
// Bubbles and arcs are keyed by their full value: calling [Map.Bubbles]
// again with the same slice changes nothing, and changing one field of a
// bubble removes the old circle and adds a new one. Removed elements stay
// in the scene with an exit animation until the next call, which also
// drops the transitions of elements that stayed.
//
// Other layers are plugins from a [layers.Registry]; [Map.Plugin] runs any
// registered plugin by name and keeps one layer per plugin.
//
// # Data sources
//
// With geographyConfig.dataUrl the topology is fetched (file or URL),
// otherwise the embedded world topology is used; the "usa" scope therefore
// needs a dataUrl. Options.DataURL names region data (JSON object, JSON
// array or CSV keyed by "id") applied with [Map.UpdateChoropleth] once the
// regions are drawn. Both are fetched concurrently.
//
// [layers.Registry]: github.com/matzehuels/mapsvg/pkg/render/layers.Registry
package datamap
