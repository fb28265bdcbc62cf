package scene

import (
	"slices"
	"strings"
	"time"

	"honnef.co/go/curve"
)

// Attr is one name/value pair of an element attribute or inline style.
type Attr struct {
	Name  string
	Value string
}

// Transition animates one attribute or style property from From to To.
// Remove marks an exit transition after which the element disappears.
type Transition struct {
	Property string
	Style    bool
	From     string
	To       string
	Delay    time.Duration
	Duration time.Duration
	Easing   string
	Remove   bool
}

// Element is one drawable node of a layer.
type Element struct {
	Tag   string
	Key   string
	Text  string
	Datum any

	attrs       []Attr
	styles      []Attr
	transitions []Transition
	curve       *curve.CubicBez
}

// SetAttr sets an attribute, keeping the position of an existing one.
func (e *Element) SetAttr(name, value string) *Element {
	e.attrs = set(e.attrs, name, value)
	return e
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) { return get(e.attrs, name) }

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) *Element {
	e.attrs = del(e.attrs, name)
	return e
}

// Attrs returns the attributes in insertion order.
func (e *Element) Attrs() []Attr { return slices.Clone(e.attrs) }

// SetStyle sets an inline style property.
func (e *Element) SetStyle(name, value string) *Element {
	e.styles = set(e.styles, name, value)
	return e
}

// Style returns an inline style value.
func (e *Element) Style(name string) (string, bool) { return get(e.styles, name) }

// RemoveStyle deletes an inline style property.
func (e *Element) RemoveStyle(name string) *Element {
	e.styles = del(e.styles, name)
	return e
}

// Styles returns the inline styles in insertion order.
func (e *Element) Styles() []Attr { return slices.Clone(e.styles) }

// StyleString renders the inline styles as a CSS declaration list.
func (e *Element) StyleString() string {
	parts := make([]string, len(e.styles))
	for i, s := range e.styles {
		parts[i] = s.Name + ": " + s.Value
	}
	return strings.Join(parts, "; ")
}

// Classes returns the space-separated entries of the class attribute.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class attribute contains class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.Classes(), class)
}

// Animate records a transition and sets the animated property to its final
// value. A transition on the same property replaces the earlier one.
func (e *Element) Animate(t Transition) *Element {
	if t.Style {
		e.SetStyle(t.Property, t.To)
	} else {
		e.SetAttr(t.Property, t.To)
	}
	for i := range e.transitions {
		if e.transitions[i].Property == t.Property {
			e.transitions[i] = t
			return e
		}
	}
	e.transitions = append(e.transitions, t)
	return e
}

// Transitions returns the pending transitions.
func (e *Element) Transitions() []Transition { return slices.Clone(e.transitions) }

// Transition returns the pending transition of a property.
func (e *Element) Transition(property string) (Transition, bool) {
	for _, t := range e.transitions {
		if t.Property == property {
			return t, true
		}
	}
	return Transition{}, false
}

// ClearTransitions drops all pending transitions.
func (e *Element) ClearTransitions() { e.transitions = nil }

// Exiting reports whether the element carries a removal transition.
func (e *Element) Exiting() bool {
	for _, t := range e.transitions {
		if t.Remove {
			return true
		}
	}
	return false
}

func set(list []Attr, name, value string) []Attr {
	for i := range list {
		if list[i].Name == name {
			list[i].Value = value
			return list
		}
	}
	return append(list, Attr{Name: name, Value: value})
}

func get(list []Attr, name string) (string, bool) {
	for _, a := range list {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func del(list []Attr, name string) []Attr {
	return slices.DeleteFunc(list, func(a Attr) bool { return a.Name == name })
}
