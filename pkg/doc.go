// Package pkg provides the core libraries for mapsvg choropleth maps.
//
// # Overview
//
// mapsvg draws world or custom TopoJSON maps as a retained scene: regions
// coloured from data, plus bubble, arc, label and legend layers that are
// reconciled against new data by key. Scenes serialise to interactive SVG
// (hover highlight and popups replayed by an embedded script), JSON, PNG
// and PDF. The pkg directory is organized into four areas:
//
//  1. [datamap] - The map facade: options, drawing, choropleth updates, plugins
//  2. [geo] - TopoJSON decoding and projections
//  3. [render] - Scene tree, layers, hover state and output sinks
//  4. Infrastructure - [source], [cache], [config], [server], [observability]
//
// # Architecture
//
// The data flow of a draw:
//
//	Options (flags, TOML/YAML/JSON map file, HTTP body)
//	         ↓
//	    [source] package (fetch topology and region data, cached)
//	         ↓
//	    [geo/topology] + [geo/projection] (features and path data)
//	         ↓
//	    [render/layers] into a [render/scene] (regions, then plugins)
//	         ↓
//	    [render/sink] → SVG/JSON/PNG/PDF
//
// # Quick Start
//
//	m, err := datamap.New(ctx, datamap.Options{
//	    Fills: datamap.Fills{"HIGH": "#D73027"},
//	    Data:  datamap.RegionData{"USA": {"fillKey": "HIGH"}},
//	})
//	if err != nil {
//	    return err
//	}
//	m.Bubbles([]layers.Bubble{{Centered: "BRA", Radius: 20}}, nil)
//	svg := m.SVG(sink.WithInteraction())
//
// # Main Packages
//
// [datamap] - Map creation, UpdateChoropleth, the plugin registry and the
// simulated pointer (Hover, Move, Unhover).
//
// [geo/topology] - TopoJSON decoding into orb geometries, the embedded world
// topology and GeoJSON export.
//
// [geo/projection] - World projections and Albers USA, fitted to the canvas.
//
// [render/scene] - Keyed element layers with enter/update/exit joins and
// recorded transitions.
//
// [render/layers] - Region, bubble, arc, label and legend drawing.
//
// [render/interact] - Hover highlight snapshots and tooltip placement.
//
// [render/sink] - SVG, JSON, PNG and PDF output.
//
// [source] - File and HTTP fetches with retry and caching; JSON and CSV
// region data.
//
// [cache] - File, Redis and null caches with typed keys.
//
// [config] - Map files (TOML, YAML, JSON) and server settings from env.
//
// [server] - HTTP API over live maps.
//
// [observability] - Hook interfaces with Prometheus collectors.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/datamap/...   # Specific package
//	go test -run Example        # Examples only
//
// [datamap]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/datamap
// [geo]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/geo
// [geo/topology]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/geo/topology
// [geo/projection]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/geo/projection
// [render]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/render
// [render/scene]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/render/scene
// [render/layers]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/render/layers
// [render/interact]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/render/interact
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/render/sink
// [source]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/mapsvg/pkg/observability
package pkg
