// Package interact implements hover behaviour for scene elements.
//
// An element bound to a [Controller] moves between two states. On
// [Controller.Enter] its fill, stroke, stroke-width and fill-opacity are
// saved into a data-previousAttributes attribute, the highlight style is
// applied and the element is raised to the top of its layer. With popups
// enabled the scene's shared tooltip is filled from the element's template
// and placed just below the pointer. [Controller.Leave] restores the saved
// values and hides the tooltip.
//
// The same contract runs in the browser: [Controller.Annotate] writes the
// highlight and popup content onto each bound element so the script emitted
// by the SVG sink can replay it.
package interact

import (
	"encoding/json"

	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// TooltipClass is the class of the shared hover box.
const TooltipClass = "datamaps-hoverover"

// PopupOffsetY is the vertical distance between pointer and tooltip.
const PopupOffsetY = 30

// Attribute names written onto bound elements.
const (
	AttrPrevious  = "data-previousAttributes"
	AttrInfo      = "data-info"
	AttrHighlight = "data-highlight"
	AttrPopup     = "data-popup"
	AttrNoRaise   = "data-noraise"
)

// Point is a pointer position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Snapshot holds the style values overwritten by a highlight.
type Snapshot struct {
	Fill        string `json:"fill"`
	Stroke      string `json:"stroke"`
	StrokeWidth string `json:"stroke-width"`
	FillOpacity string `json:"fill-opacity"`
}

func (s Snapshot) pairs() [4][2]string {
	return [4][2]string{
		{"fill", s.Fill},
		{"stroke", s.Stroke},
		{"stroke-width", s.StrokeWidth},
		{"fill-opacity", s.FillOpacity},
	}
}

func snapshotOf(el *scene.Element) Snapshot {
	var s Snapshot
	s.Fill, _ = el.Style("fill")
	s.Stroke, _ = el.Style("stroke")
	s.StrokeWidth, _ = el.Style("stroke-width")
	s.FillOpacity, _ = el.Style("fill-opacity")
	return s
}

// Highlight is the style applied while hovered. Empty fields are left
// untouched.
type Highlight = Snapshot

// Template renders tooltip HTML from the bound datum and the element's
// decoded data-info (nil when absent).
type Template func(datum any, info map[string]any) string

// Binding configures hover behaviour for one element.
type Binding struct {
	HighlightOnHover bool
	PopupOnHover     bool
	Highlight        Highlight
	Template         Template
	// NoRaise keeps the element at its paint position while hovered.
	NoRaise bool
}

// State is the hover state of an element.
type State int

const (
	Idle State = iota
	Hovered
)

func (s State) String() string {
	if s == Hovered {
		return "hovered"
	}
	return "idle"
}

type bound struct {
	layer   *scene.Layer
	binding Binding
	state   State
	datum   any
}

// Controller tracks hover bindings for one scene.
type Controller struct {
	scene    *scene.Scene
	bindings map[*scene.Element]*bound
}

// New creates a controller for s.
func New(s *scene.Scene) *Controller {
	return &Controller{scene: s, bindings: map[*scene.Element]*bound{}}
}

// Bind attaches hover behaviour to an element of layer. Binding an element
// again replaces its configuration and resets it to idle.
func (c *Controller) Bind(layer *scene.Layer, el *scene.Element, b Binding) {
	if old, ok := c.bindings[el]; ok && old.state == Hovered {
		c.Leave(el)
	}
	c.bindings[el] = &bound{layer: layer, binding: b}
	if b.PopupOnHover {
		c.scene.EnsureTooltip(TooltipClass)
	}
}

// Unbind detaches an element, restoring it first if it is hovered.
func (c *Controller) Unbind(el *scene.Element) {
	if b, ok := c.bindings[el]; ok && b.state == Hovered {
		c.Leave(el)
	}
	delete(c.bindings, el)
}

// Bound reports whether el has a binding.
func (c *Controller) Bound(el *scene.Element) bool {
	_, ok := c.bindings[el]
	return ok
}

// State returns the hover state of el.
func (c *Controller) State(el *scene.Element) State {
	if b, ok := c.bindings[el]; ok {
		return b.state
	}
	return Idle
}

// Enter starts hovering el at pointer. datum is passed to the template;
// when nil the element's own datum is used. It returns false when el is
// not bound.
func (c *Controller) Enter(el *scene.Element, datum any, pointer Point) bool {
	b, ok := c.bindings[el]
	if !ok {
		return false
	}
	if datum == nil {
		datum = el.Datum
	}
	b.datum = datum

	if b.binding.HighlightOnHover && b.state != Hovered {
		snap := snapshotOf(el)
		raw, _ := json.Marshal(snap)
		el.SetAttr(AttrPrevious, string(raw))
		for _, kv := range b.binding.Highlight.pairs() {
			if kv[1] != "" {
				el.SetStyle(kv[0], kv[1])
			}
		}
		if !b.binding.NoRaise && b.layer != nil {
			b.layer.RaiseToFront(el)
		}
	}
	b.state = Hovered

	if b.binding.PopupOnHover {
		c.showPopup(el, b, pointer)
	}
	return true
}

// Move tracks the pointer while el is hovered, re-rendering the tooltip
// from the element's current data.
func (c *Controller) Move(el *scene.Element, pointer Point) bool {
	b, ok := c.bindings[el]
	if !ok || b.state != Hovered {
		return false
	}
	if b.binding.PopupOnHover {
		c.showPopup(el, b, pointer)
	}
	return true
}

// Leave ends hovering el. Leaving an element that was never entered does
// nothing.
func (c *Controller) Leave(el *scene.Element) bool {
	b, ok := c.bindings[el]
	if !ok || b.state != Hovered {
		return false
	}
	b.state = Idle

	if b.binding.HighlightOnHover {
		if raw, ok := el.Attr(AttrPrevious); ok {
			var snap Snapshot
			if err := json.Unmarshal([]byte(raw), &snap); err == nil {
				restore(el, snap)
			}
		}
	}
	if t := c.scene.Tooltip(); t != nil {
		t.Visible = false
	}
	return true
}

// Popup renders the tooltip HTML for el without showing it.
func (c *Controller) Popup(el *scene.Element) string {
	b, ok := c.bindings[el]
	if !ok || !b.binding.PopupOnHover || b.binding.Template == nil {
		return ""
	}
	datum := b.datum
	if datum == nil {
		datum = el.Datum
	}
	return b.binding.Template(datum, Info(el))
}

// Annotate writes each bound element's highlight and popup content as data
// attributes for client-side replay.
func (c *Controller) Annotate() {
	for el, b := range c.bindings {
		if b.binding.HighlightOnHover {
			raw, _ := json.Marshal(b.binding.Highlight)
			el.SetAttr(AttrHighlight, string(raw))
		} else {
			el.RemoveAttr(AttrHighlight)
		}
		if html := c.Popup(el); html != "" {
			el.SetAttr(AttrPopup, html)
		} else {
			el.RemoveAttr(AttrPopup)
		}
		if b.binding.NoRaise {
			el.SetAttr(AttrNoRaise, "true")
		}
	}
}

// Info decodes the element's data-info attribute.
func Info(el *scene.Element) map[string]any {
	raw, ok := el.Attr(AttrInfo)
	if !ok || raw == "" {
		return nil
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil
	}
	return info
}

func (c *Controller) showPopup(el *scene.Element, b *bound, pointer Point) {
	t := c.scene.EnsureTooltip(TooltipClass)
	t.Visible = true
	t.X = pointer.X
	t.Y = pointer.Y + PopupOffsetY
	if b.binding.Template != nil {
		t.HTML = b.binding.Template(b.datum, Info(el))
	}
}

func restore(el *scene.Element, snap Snapshot) {
	for _, kv := range snap.pairs() {
		if kv[1] == "" {
			el.RemoveStyle(kv[0])
			continue
		}
		el.SetStyle(kv[0], kv[1])
	}
}
