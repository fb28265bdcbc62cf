package layers

import (
	"slices"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/geo/topology"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// smallStates are stacked in a column off the east coast with a leader
// line, in this order.
var smallStates = []string{"VT", "NH", "MA", "RI", "CT", "NJ", "DE", "MD", "DC"}

// labelStart is where the small-state column begins.
var labelStart = [2]float64{-67.707617, 42.722131}

func labelOffset(id string) (x, y float64) {
	x, y = 7.5, 5
	switch id {
	case "FL", "KY":
		x = -2.5
	case "MI":
		x, y = -2.5, 18
	case "NY":
		x = -1
	case "LA":
		x = 13
	}
	return x, y
}

// Labels writes each region id next to its centroid. The layer is cleared
// first, so repeated calls do not stack labels.
func Labels(rc *Context, layer *scene.Layer, opts LabelOptions) error {
	if rc.Subunits == nil || rc.Subunits.Layer() == nil {
		return errors.New(errors.ErrCodeInvalidInput, "labels need drawn regions")
	}
	layer.Clear()

	color := opts.LabelColor
	if color == "" {
		color = "#000"
	}
	fontSize := opts.FontSize
	if fontSize == 0 {
		fontSize = 10
	}
	stackSize := opts.FontSize
	if stackSize == 0 {
		stackSize = 12
	}
	family := opts.FontFamily
	if family == "" {
		family = "Verdana"
	}
	lineWidth := opts.LineWidth
	if lineWidth == 0 {
		lineWidth = 1
	}
	sx, sy, startOK := rc.Projection.Project(labelStart[0], labelStart[1])

	for _, region := range rc.Subunits.Layer().Elements() {
		f, ok := region.Datum.(topology.Feature)
		if !ok {
			continue
		}
		cx, cy, ok := rc.Projection.CentroidOf(f.Geometry)
		if !ok {
			continue
		}
		xOff, yOff := labelOffset(f.ID)
		x, y := cx-xOff, cy+yOff

		if idx := slices.Index(smallStates, f.ID); idx >= 0 && startOK {
			x = sx
			y = sy + float64(idx)*(2+stackSize)
			line := layer.Append("line", f.ID+"-line")
			line.SetAttr("x1", projection.Num(x-3))
			line.SetAttr("y1", projection.Num(y-5))
			line.SetAttr("x2", projection.Num(cx))
			line.SetAttr("y2", projection.Num(cy))
			line.SetStyle("stroke", color)
			line.SetStyle("stroke-width", num(lineWidth))
		}

		text := layer.Append("text", f.ID)
		text.SetAttr("x", projection.Num(x))
		text.SetAttr("y", projection.Num(y))
		text.SetStyle("font-size", num(fontSize)+"px")
		text.SetStyle("font-family", family)
		text.SetStyle("fill", color)
		text.Text = f.ID
	}
	return nil
}

func renderLabels(rc *Context, layer *scene.Layer, _ any, opts any) (Diff, error) {
	var o LabelOptions
	if err := overlayOptions(opts, &o); err != nil {
		return Diff{}, err
	}
	return Diff{}, Labels(rc, layer, o)
}
