package layers

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// Bubble is a circle marker. It is placed at Latitude/Longitude when both
// are set, else at the centroid of the region named by Centered. Fields
// other than the ones below are kept for templates and identity.
type Bubble struct {
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Centered    string   `json:"centered,omitempty"`
	Radius      float64  `json:"radius"`
	FillKey     string   `json:"fillKey,omitempty"`
	BorderWidth *float64 `json:"borderWidth,omitempty"`
	BorderColor string   `json:"borderColor,omitempty"`
	FillOpacity *float64 `json:"fillOpacity,omitempty"`
	Name        string   `json:"name,omitempty"`
}

// Bubbles renders data as circles into layer. data must be a slice or
// array; each item is identified by its canonical JSON. Entering circles
// grow from r=0, exiting ones shrink after ExitDelay and are removed, and
// circles whose datum is still present are left alone and carry no
// transition.
//
// Positions are resolved for every entering item before the layer is
// touched, so an item with no position rejects the whole call with
// ErrCodeMissingPosition.
func Bubbles(rc *Context, layer *scene.Layer, data any, config BubblesConfig) (Diff, error) {
	items, err := normalize[Bubble](data, "bubbles")
	if err != nil {
		return Diff{}, err
	}
	config.SetDefaults()

	keys := keysOf(items)
	res := layer.Join(keys)

	type placed struct {
		x, y float64
	}
	positions := make(map[int]placed, len(res.Enter))
	for _, i := range res.Enter {
		x, y, err := bubblePosition(rc, items[i].value)
		if err != nil {
			return Diff{}, errors.Wrap(errors.GetCode(err), err, "bubbles[%d]", i)
		}
		positions[i] = placed{x, y}
	}

	layer.Settle()
	for _, el := range res.Exit {
		from, _ := el.Attr("r")
		el.Animate(scene.Transition{
			Property: "r",
			From:     from,
			To:       "0",
			Delay:    time.Duration(intOf(config.ExitDelay)) * time.Millisecond,
			Duration: exitTransition,
			Remove:   true,
		})
		if rc.Controller != nil {
			rc.Controller.Unbind(el)
		}
		layer.Exit(el)
	}

	for _, i := range res.Enter {
		b := items[i].value
		pos := positions[i]

		el := layer.Append("circle", items[i].key)
		el.Datum = items[i].raw
		el.SetAttr("class", "datamaps-bubble")
		el.SetAttr("cx", projection.Num(pos.x))
		el.SetAttr("cy", projection.Num(pos.y))
		if raw, err := json.Marshal(items[i].raw); err == nil {
			el.SetAttr(interact.AttrInfo, string(raw))
		}

		borderWidth, fillOpacity := floatOf(config.BorderWidth), floatOf(config.FillOpacity)
		if b.BorderWidth != nil {
			borderWidth = *b.BorderWidth
		}
		if b.FillOpacity != nil {
			fillOpacity = *b.FillOpacity
		}
		borderColor := config.BorderColor
		if b.BorderColor != "" {
			borderColor = b.BorderColor
		}
		el.SetStyle("stroke", borderColor)
		el.SetStyle("stroke-width", num(borderWidth))
		el.SetStyle("fill-opacity", num(fillOpacity))
		el.SetStyle("fill", rc.Fills.Resolve(b.FillKey))

		radius := num(b.Radius)
		if isTrue(config.Animate) {
			el.Animate(scene.Transition{Property: "r", From: "0", To: radius, Duration: radiusTransition})
		} else {
			el.SetAttr("r", radius)
		}

		if rc.Controller != nil && (isTrue(config.HighlightOnHover) || isTrue(config.PopupOnHover)) {
			rc.Controller.Bind(layer, el, config.binding())
		}
	}
	return diffOf(keys, res), nil
}

func bubblePosition(rc *Context, b Bubble) (x, y float64, err error) {
	if b.Latitude != nil && b.Longitude != nil {
		if x, y, ok := rc.Projection.Project(*b.Longitude, *b.Latitude); ok {
			return x, y, nil
		}
		return 0, 0, errors.New(errors.ErrCodeMissingPosition,
			"coordinates (%v, %v) fall outside the projection", *b.Latitude, *b.Longitude)
	}
	if b.Centered != "" && rc.Subunits != nil {
		if x, y, ok := rc.Subunits.Centroid(b.Centered); ok {
			return x, y, nil
		}
		return 0, 0, errors.New(errors.ErrCodeMissingPosition, "no region %q to center on", b.Centered)
	}
	return 0, 0, errors.New(errors.ErrCodeMissingPosition, "bubble needs latitude/longitude or centered")
}

func renderBubbles(rc *Context, layer *scene.Layer, data any, opts any) (Diff, error) {
	config := rc.BubblesConfig
	if err := overlayOptions(opts, &config); err != nil {
		return Diff{}, err
	}
	switch o := opts.(type) {
	case BubblesConfig:
		if o.PopupTemplate != nil {
			config.PopupTemplate = o.PopupTemplate
		}
	case *BubblesConfig:
		if o != nil && o.PopupTemplate != nil {
			config.PopupTemplate = o.PopupTemplate
		}
	}
	return Bubbles(rc, layer, data, config)
}

// overlayOptions lays opts over into through their JSON form: only the
// fields opts sets replace those already in into. opts may be a typed
// config, a pointer to one, or a decoded JSON object. nil is a no-op.
func overlayOptions(opts any, into any) error {
	if opts == nil {
		return nil
	}
	if v := reflect.ValueOf(opts); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "encode plugin options")
	}
	detach(into)
	if err := json.Unmarshal(b, into); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "decode plugin options")
	}
	return nil
}

// detach points every pointer field of the struct behind into at its own
// copy. Decoding writes through non-nil pointers, and into is a copy of the
// map-level config whose pointers are shared.
func detach(into any) {
	v := reflect.ValueOf(into)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.Pointer || f.IsNil() || !f.CanSet() {
			continue
		}
		c := reflect.New(f.Elem().Type())
		c.Elem().Set(f.Elem())
		f.Set(c)
	}
}
