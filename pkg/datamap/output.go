package datamap

import (
	"context"

	"github.com/matzehuels/mapsvg/pkg/render/sink"
)

// SVG serialises the current scene. Hover highlight and popup content is
// written onto each bound element first, so the embedded script (see
// sink.WithInteraction) can replay it in a browser.
func (m *Map) SVG(opts ...sink.SVGOption) []byte {
	m.ctl.Annotate()
	return sink.RenderSVG(m.scene, opts...)
}

// JSON serialises the scene tree with the map's scope and projection as
// metadata.
func (m *Map) JSON(opts ...sink.JSONOption) ([]byte, error) {
	meta := map[string]any{
		"scope":      m.opts.Scope,
		"projection": m.proj.Algorithm(),
		"regions":    len(m.features),
	}
	return sink.RenderJSON(m.scene, append([]sink.JSONOption{sink.WithJSONMeta(meta)}, opts...)...)
}

// PNG renders a static snapshot as PNG. Requires rsvg-convert.
func (m *Map) PNG(ctx context.Context, opts ...sink.PNGOption) ([]byte, error) {
	return sink.RenderPNG(ctx, m.scene, opts...)
}

// PDF renders a static snapshot as PDF. Requires rsvg-convert.
func (m *Map) PDF(ctx context.Context, opts ...sink.PDFOption) ([]byte, error) {
	return sink.RenderPDF(ctx, m.scene, opts...)
}

// Render writes the map in format ("svg", "json", "png" or "pdf").
func (m *Map) Render(ctx context.Context, format string, interactive bool) ([]byte, error) {
	switch format {
	case "svg", "":
		if interactive {
			return m.SVG(sink.WithInteraction()), nil
		}
		return m.SVG(), nil
	case "json":
		return m.JSON()
	case "png":
		return m.PNG(ctx)
	case "pdf":
		return m.PDF(ctx)
	}
	return nil, unsupportedFormat(format)
}
