package layers

import (
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

const (
	legendFontSize  = 12
	legendCharWidth = 7
	legendSwatch    = 20
	legendLeft      = 4
)

// Legend draws one swatch per fill key along the bottom-left edge, with an
// optional title above. defaultFill is listed only when DefaultFillName is
// set; other keys are labelled from Labels or as "key: ".
func Legend(rc *Context, layer *scene.Layer, fills Fills, opts LegendOptions) {
	layer.Clear()
	if len(fills) == 0 {
		return
	}

	base := rc.Scene.Height - legendFontSize
	if opts.LegendTitle != "" {
		title := layer.Append("text", "title")
		title.SetAttr("class", "datamaps-legend-title")
		title.SetAttr("x", projection.Num(legendLeft))
		title.SetAttr("y", projection.Num(base-2*legendFontSize))
		title.SetStyle("font-weight", "bold")
		title.Text = opts.LegendTitle
	}

	x := float64(legendLeft)
	for _, key := range fills.Keys() {
		label := key + ": "
		if key == DefaultFillKey {
			if opts.DefaultFillName == "" {
				continue
			}
			label = opts.DefaultFillName
		} else if l := opts.Labels[key]; l != "" {
			label = l
		}

		dt := layer.Append("text", "dt-"+key)
		dt.SetAttr("x", projection.Num(x))
		dt.SetAttr("y", projection.Num(base))
		dt.Text = label
		x += float64(len([]rune(label))*legendCharWidth) + 3

		dd := layer.Append("rect", "dd-"+key)
		dd.SetAttr("x", projection.Num(x))
		dd.SetAttr("y", projection.Num(base-legendFontSize+2))
		dd.SetAttr("width", num(legendSwatch))
		dd.SetAttr("height", num(legendFontSize))
		dd.SetAttr("rx", "3")
		dd.SetStyle("fill", fills[key])
		x += legendSwatch + 6
	}
}

func renderLegend(rc *Context, layer *scene.Layer, _ any, opts any) (Diff, error) {
	var o LegendOptions
	if err := overlayOptions(opts, &o); err != nil {
		return Diff{}, err
	}
	Legend(rc, layer, rc.Fills, o)
	return Diff{}, nil
}
