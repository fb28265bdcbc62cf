// Package scene holds the retained element tree that map layers draw into.
//
// A [Scene] is an ordered stack of [Layer] groups, each an ordered list of
// keyed [Element] values (SVG paths, circles, text). Layers reconcile their
// elements against new data with [Layer.Join], which splits keys into
// enter, update and exit sets. Elements carry ordered attributes and inline
// styles plus a list of pending [Transition] records; the SVG sink turns
// those into CSS animations.
//
// A scene is not safe for concurrent mutation. Callers that share one across
// goroutines must serialise access.
package scene

import (
	"encoding/json"
	"fmt"
	"slices"
)

// StyleBlock is a named CSS block emitted once per scene.
type StyleBlock struct {
	Name string
	CSS  string
}

// Tooltip is the single shared hover box of a scene.
type Tooltip struct {
	Class   string
	Visible bool
	X, Y    float64
	HTML    string
}

// Scene is the root of the element tree.
type Scene struct {
	Width, Height float64
	Class         string

	layers  []*Layer
	styles  []StyleBlock
	tooltip *Tooltip
}

// New creates an empty scene of the given size. Class is the CSS class of
// the root svg element.
func New(width, height float64, class string) *Scene {
	return &Scene{Width: width, Height: height, Class: class}
}

// AddLayer returns the layer with the given class, appending a new one on
// top of the stack when none exists yet.
func (s *Scene) AddLayer(class string) *Layer {
	if l := s.Layer(class); l != nil {
		return l
	}
	return s.NewLayer(class)
}

// NewLayer always appends a new layer, even when one with the same class
// already exists.
func (s *Scene) NewLayer(class string) *Layer {
	l := &Layer{Class: class, index: map[string]*Element{}}
	s.layers = append(s.layers, l)
	return l
}

// Layer returns the first layer with the given class, or nil.
func (s *Scene) Layer(class string) *Layer {
	for _, l := range s.layers {
		if l.Class == class {
			return l
		}
	}
	return nil
}

// Layers returns the layers bottom to top.
func (s *Scene) Layers() []*Layer { return slices.Clone(s.layers) }

// RemoveLayer drops every layer with the given class.
func (s *Scene) RemoveLayer(class string) {
	s.layers = slices.DeleteFunc(s.layers, func(l *Layer) bool { return l.Class == class })
}

// EnsureStyles registers a CSS block under name. Registering the same name
// again is a no-op; the return value reports whether the block was added.
func (s *Scene) EnsureStyles(name, css string) bool {
	for _, b := range s.styles {
		if b.Name == name {
			return false
		}
	}
	s.styles = append(s.styles, StyleBlock{Name: name, CSS: css})
	return true
}

// Styles returns the registered style blocks in registration order.
func (s *Scene) Styles() []StyleBlock { return slices.Clone(s.styles) }

// EnsureTooltip returns the scene tooltip, creating a hidden one with the
// given class on first use.
func (s *Scene) EnsureTooltip(class string) *Tooltip {
	if s.tooltip == nil {
		s.tooltip = &Tooltip{Class: class}
	}
	return s.tooltip
}

// Tooltip returns the scene tooltip, or nil when none was created.
func (s *Scene) Tooltip() *Tooltip { return s.tooltip }

// Flush drops elements that finished exiting in every layer.
func (s *Scene) Flush() {
	for _, l := range s.layers {
		l.Flush()
	}
}

// Count returns the number of live elements across all layers.
func (s *Scene) Count() int {
	n := 0
	for _, l := range s.layers {
		n += len(l.elements)
	}
	return n
}

// KeyOf returns the canonical identity of a datum: its JSON encoding, with
// map keys sorted. Values that cannot be encoded fall back to %v.
func KeyOf(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
