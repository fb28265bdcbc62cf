// Package render turns map scenes into output documents.
//
// # Overview
//
// Drawing happens in three steps, each in its own subpackage:
//
//   - [scene]: the retained element tree, keyed joins and transitions
//   - [layers]: regions, bubbles, arcs, labels and the legend drawn into a scene
//   - [interact]: hover highlight and tooltip state of scene elements
//   - [sink]: serialisation of a scene to SVG, JSON, PNG or PDF
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(s)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [scene]: github.com/matzehuels/mapsvg/pkg/render/scene
// [layers]: github.com/matzehuels/mapsvg/pkg/render/layers
// [interact]: github.com/matzehuels/mapsvg/pkg/render/interact
// [sink]: github.com/matzehuels/mapsvg/pkg/render/sink
package render
