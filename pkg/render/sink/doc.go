// Package sink provides output format renderers for map scenes.
//
// # Overview
//
// A "sink" transforms a [scene.Scene] into a final output format. This
// package provides renderers for:
//
//   - SVG: Scalable vector graphics with CSS animations and hover script
//   - JSON: The element tree for external tools and tests
//   - PDF: Print-ready output (requires rsvg-convert)
//   - PNG: Raster image output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] writes one group per layer. Pending transitions become
// keyframe animations with backwards fill, so the document settles on the
// element's recorded values. With [WithInteraction] a small script replays
// highlight and tooltip behaviour from the data-highlight and data-popup
// attributes written by the hover controller.
//
//	svg := sink.RenderSVG(s, sink.WithInteraction())
//
// PNG and PDF output always use the static form: no animations, no exiting
// elements, no script.
//
// [scene.Scene]: github.com/matzehuels/mapsvg/pkg/render/scene.Scene
package sink
