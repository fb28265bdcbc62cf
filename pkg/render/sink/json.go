package sink

import (
	"encoding/json"

	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	exiting bool
	meta    map[string]any
}

// WithJSONExiting includes elements that are still animating out.
func WithJSONExiting() JSONOption { return func(r *jsonRenderer) { r.exiting = true } }

// WithJSONMeta attaches free-form metadata (scope, projection, ...) to the
// output.
func WithJSONMeta(meta map[string]any) JSONOption { return func(r *jsonRenderer) { r.meta = meta } }

type jsonOutput struct {
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	Class   string         `json:"class,omitempty"`
	Styles  []string       `json:"styles,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Layers  []jsonLayer    `json:"layers"`
	Tooltip *jsonTooltip   `json:"tooltip,omitempty"`
}

type jsonLayer struct {
	Class    string        `json:"class"`
	Elements []jsonElement `json:"elements"`
}

type jsonElement struct {
	Tag         string            `json:"tag"`
	Key         string            `json:"key,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Style       map[string]string `json:"style,omitempty"`
	Transitions []jsonTransition  `json:"transitions,omitempty"`
	Exiting     bool              `json:"exiting,omitempty"`
}

type jsonTransition struct {
	Property string `json:"property"`
	From     string `json:"from,omitempty"`
	To       string `json:"to"`
	DelayMS  int64  `json:"delay_ms,omitempty"`
	Duration int64  `json:"duration_ms"`
	Remove   bool   `json:"remove,omitempty"`
}

type jsonTooltip struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	HTML    string  `json:"html,omitempty"`
}

// RenderJSON serialises the scene tree as indented JSON.
func RenderJSON(s *scene.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:  s.Width,
		Height: s.Height,
		Class:  s.Class,
		Meta:   r.meta,
		Layers: make([]jsonLayer, 0, len(s.Layers())),
	}
	for _, b := range s.Styles() {
		out.Styles = append(out.Styles, b.Name)
	}
	for _, l := range s.Layers() {
		jl := jsonLayer{Class: l.Class, Elements: []jsonElement{}}
		for _, el := range l.Elements() {
			jl.Elements = append(jl.Elements, toJSONElement(el, false))
		}
		if r.exiting {
			for _, el := range l.Exiting() {
				jl.Elements = append(jl.Elements, toJSONElement(el, true))
			}
		}
		out.Layers = append(out.Layers, jl)
	}
	if t := s.Tooltip(); t != nil {
		out.Tooltip = &jsonTooltip{Visible: t.Visible, X: t.X, Y: t.Y, HTML: t.HTML}
	}
	return json.MarshalIndent(out, "", "  ")
}

func toJSONElement(el *scene.Element, exiting bool) jsonElement {
	je := jsonElement{Tag: el.Tag, Key: el.Key, Text: el.Text, Exiting: exiting}
	if attrs := el.Attrs(); len(attrs) > 0 {
		je.Attrs = make(map[string]string, len(attrs))
		for _, a := range attrs {
			je.Attrs[a.Name] = a.Value
		}
	}
	if styles := el.Styles(); len(styles) > 0 {
		je.Style = make(map[string]string, len(styles))
		for _, a := range styles {
			je.Style[a.Name] = a.Value
		}
	}
	for _, t := range el.Transitions() {
		je.Transitions = append(je.Transitions, jsonTransition{
			Property: t.Property,
			From:     t.From,
			To:       t.To,
			DelayMS:  t.Delay.Milliseconds(),
			Duration: t.Duration.Milliseconds(),
			Remove:   t.Remove,
		})
	}
	return je
}
