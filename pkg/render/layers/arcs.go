package layers

import (
	"fmt"
	"time"

	"honnef.co/go/curve"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// LatLng is a geographic position.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ArcOptions overrides the layer stroke for one arc.
type ArcOptions struct {
	StrokeColor string   `json:"strokeColor,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
}

// Arc connects two positions with a curved path.
type Arc struct {
	Origin      LatLng      `json:"origin"`
	Destination LatLng      `json:"destination"`
	Options     *ArcOptions `json:"options,omitempty"`
}

// ArcCurve returns the curve of an arc between two projected points: a
// smooth cubic starting at the origin whose second control point sits
// 50*sharpness right of and 75*sharpness above the midpoint.
func ArcCurve(ox, oy, dx, dy, sharpness float64) curve.CubicBez {
	mx, my := (ox+dx)/2, (oy+dy)/2
	return curve.CubicBez{
		P0: curve.Point{X: ox, Y: oy},
		P1: curve.Point{X: ox, Y: oy},
		P2: curve.Point{X: mx + 50*sharpness, Y: my - 75*sharpness},
		P3: curve.Point{X: dx, Y: dy},
	}
}

// ArcPath returns the path data of [ArcCurve]. The first control point
// equals the start, so the curve is written as M followed by S.
func ArcPath(ox, oy, dx, dy, sharpness float64) string {
	return arcPath(ArcCurve(ox, oy, dx, dy, sharpness))
}

func arcPath(c curve.CubicBez) string {
	n := projection.Num
	return fmt.Sprintf("M%s,%sS%s,%s,%s,%s",
		n(c.P0.X), n(c.P0.Y), n(c.P2.X), n(c.P2.Y), n(c.P3.X), n(c.P3.Y))
}

// Arcs renders data as curved paths into layer with the same keyed
// reconciliation as [Bubbles]. Entering arcs are committed first and then
// measured, so the dash reveal covers exactly the drawn length.
func Arcs(rc *Context, layer *scene.Layer, data any, config ArcConfig) (Diff, error) {
	items, err := normalize[Arc](data, "arcs")
	if err != nil {
		return Diff{}, err
	}
	config.SetDefaults()

	keys := keysOf(items)
	res := layer.Join(keys)

	curves := make(map[int]curve.CubicBez, len(res.Enter))
	for _, i := range res.Enter {
		a := items[i].value
		ox, oy, ok := rc.Projection.Project(a.Origin.Longitude, a.Origin.Latitude)
		if !ok {
			return Diff{}, errors.New(errors.ErrCodeMissingPosition, "arcs[%d]: origin outside the projection", i)
		}
		dx, dy, ok := rc.Projection.Project(a.Destination.Longitude, a.Destination.Latitude)
		if !ok {
			return Diff{}, errors.New(errors.ErrCodeMissingPosition, "arcs[%d]: destination outside the projection", i)
		}
		curves[i] = ArcCurve(ox, oy, dx, dy, floatOf(config.ArcSharpness))
	}

	layer.Settle()
	for _, el := range res.Exit {
		el.Animate(scene.Transition{
			Property: "opacity",
			Style:    true,
			From:     "1",
			To:       "0",
			Duration: exitTransition,
			Remove:   true,
		})
		layer.Exit(el)
	}

	entered := make([]*scene.Element, 0, len(res.Enter))
	for _, i := range res.Enter {
		a := items[i].value
		stroke, width := config.StrokeColor, floatOf(config.StrokeWidth)
		if a.Options != nil {
			if a.Options.StrokeColor != "" {
				stroke = a.Options.StrokeColor
			}
			if a.Options.StrokeWidth != nil {
				width = *a.Options.StrokeWidth
			}
		}

		el := layer.Append("path", items[i].key)
		el.Datum = items[i].raw
		el.SetAttr("class", "datamaps-arc")
		el.SetCurve(curves[i], arcPath(curves[i]))
		el.SetStyle("stroke-linecap", "round")
		el.SetStyle("stroke", stroke)
		el.SetStyle("fill", "none")
		el.SetStyle("stroke-width", num(width))
		entered = append(entered, el)
	}

	// Measure after every path is committed. Each entering path carries its
	// curve, so measuring cannot fail.
	speed := time.Duration(intOf(config.AnimationSpeed)) * time.Millisecond
	for _, el := range entered {
		length, _ := scene.MeasureLength(el)
		scene.AnimateDash(el, length, arcDelay, speed)
	}
	return diffOf(keys, res), nil
}

func renderArcs(rc *Context, layer *scene.Layer, data any, opts any) (Diff, error) {
	config := rc.ArcConfig
	if err := overlayOptions(opts, &config); err != nil {
		return Diff{}, err
	}
	return Arcs(rc, layer, data, config)
}
