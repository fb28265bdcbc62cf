package layers

import (
	"time"

	"github.com/matzehuels/mapsvg/pkg/render/interact"
)

// Defaults shared by the map layers.
const (
	DefaultFillKey   = "defaultFill"
	DefaultFillColor = "#ABDDA4"

	DefaultHighlightFillColor   = "#FC8D59"
	DefaultHighlightBorderColor = "rgba(250, 15, 160, 0.2)"
	DefaultHighlightBorderWidth = 2

	// fillTransition is the duration of a recolor.
	fillTransition = 250 * time.Millisecond
	// radiusTransition is the duration of a bubble growing in.
	radiusTransition = 400 * time.Millisecond
	// exitTransition is the duration of a bubble or arc fading out.
	exitTransition = 250 * time.Millisecond
	// arcDelay is the pause before an arc starts drawing.
	arcDelay = 100 * time.Millisecond
)

func boolPtr(b bool) *bool { return &b }

func isTrue(b *bool) bool { return b != nil && *b }

// Float returns a pointer to v, for numeric options where 0 is a valid
// setting.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func setFloat(p **float64, v float64) {
	if *p == nil {
		*p = Float(v)
	}
}

func setInt(p **int, v int) {
	if *p == nil {
		*p = Int(v)
	}
}

func floatOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intOf(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// GeographyConfig styles the region paths.
type GeographyConfig struct {
	DataURL              string  `json:"dataUrl,omitempty" toml:"dataUrl" yaml:"dataUrl,omitempty"`
	HideAntarctica       *bool   `json:"hideAntarctica,omitempty" toml:"hideAntarctica" yaml:"hideAntarctica,omitempty"`
	BorderWidth          *float64 `json:"borderWidth,omitempty" toml:"borderWidth" yaml:"borderWidth,omitempty"`
	BorderColor          string  `json:"borderColor,omitempty" toml:"borderColor" yaml:"borderColor,omitempty"`
	PopupOnHover         *bool   `json:"popupOnHover,omitempty" toml:"popupOnHover" yaml:"popupOnHover,omitempty"`
	HighlightOnHover     *bool   `json:"highlightOnHover,omitempty" toml:"highlightOnHover" yaml:"highlightOnHover,omitempty"`
	HighlightFillColor   string  `json:"highlightFillColor,omitempty" toml:"highlightFillColor" yaml:"highlightFillColor,omitempty"`
	HighlightBorderColor string  `json:"highlightBorderColor,omitempty" toml:"highlightBorderColor" yaml:"highlightBorderColor,omitempty"`
	HighlightBorderWidth *float64 `json:"highlightBorderWidth,omitempty" toml:"highlightBorderWidth" yaml:"highlightBorderWidth,omitempty"`
	// NoRaise keeps hovered regions in paint order.
	NoRaise bool `json:"noRaise,omitempty" toml:"noRaise" yaml:"noRaise,omitempty"`

	PopupTemplate interact.Template `json:"-" toml:"-" yaml:"-"`
}

// SetDefaults fills unset fields. Nil options and empty strings count as
// unset; an explicit 0 is kept.
func (c *GeographyConfig) SetDefaults() {
	if c.HideAntarctica == nil {
		c.HideAntarctica = boolPtr(true)
	}
	setFloat(&c.BorderWidth, 1)
	if c.BorderColor == "" {
		c.BorderColor = "#FDFDFD"
	}
	if c.PopupOnHover == nil {
		c.PopupOnHover = boolPtr(true)
	}
	if c.HighlightOnHover == nil {
		c.HighlightOnHover = boolPtr(true)
	}
	if c.HighlightFillColor == "" {
		c.HighlightFillColor = DefaultHighlightFillColor
	}
	if c.HighlightBorderColor == "" {
		c.HighlightBorderColor = DefaultHighlightBorderColor
	}
	setFloat(&c.HighlightBorderWidth, DefaultHighlightBorderWidth)
	if c.PopupTemplate == nil {
		c.PopupTemplate = GeographyPopup
	}
}

func (c *GeographyConfig) binding() interact.Binding {
	return interact.Binding{
		HighlightOnHover: isTrue(c.HighlightOnHover),
		PopupOnHover:     isTrue(c.PopupOnHover),
		Highlight: interact.Highlight{
			Fill:        c.HighlightFillColor,
			Stroke:      c.HighlightBorderColor,
			StrokeWidth: num(floatOf(c.HighlightBorderWidth)),
		},
		Template: c.PopupTemplate,
		NoRaise:  c.NoRaise,
	}
}

// BubblesConfig styles the bubble layer.
type BubblesConfig struct {
	BorderWidth          *float64 `json:"borderWidth,omitempty" toml:"borderWidth" yaml:"borderWidth,omitempty"`
	BorderColor          string  `json:"borderColor,omitempty" toml:"borderColor" yaml:"borderColor,omitempty"`
	PopupOnHover         *bool   `json:"popupOnHover,omitempty" toml:"popupOnHover" yaml:"popupOnHover,omitempty"`
	FillOpacity          *float64 `json:"fillOpacity,omitempty" toml:"fillOpacity" yaml:"fillOpacity,omitempty"`
	Animate              *bool   `json:"animate,omitempty" toml:"animate" yaml:"animate,omitempty"`
	HighlightOnHover     *bool   `json:"highlightOnHover,omitempty" toml:"highlightOnHover" yaml:"highlightOnHover,omitempty"`
	HighlightFillColor   string  `json:"highlightFillColor,omitempty" toml:"highlightFillColor" yaml:"highlightFillColor,omitempty"`
	HighlightBorderColor string  `json:"highlightBorderColor,omitempty" toml:"highlightBorderColor" yaml:"highlightBorderColor,omitempty"`
	HighlightBorderWidth *float64 `json:"highlightBorderWidth,omitempty" toml:"highlightBorderWidth" yaml:"highlightBorderWidth,omitempty"`
	HighlightFillOpacity *float64 `json:"highlightFillOpacity,omitempty" toml:"highlightFillOpacity" yaml:"highlightFillOpacity,omitempty"`
	// ExitDelay is in milliseconds.
	ExitDelay *int `json:"exitDelay,omitempty" toml:"exitDelay" yaml:"exitDelay,omitempty"`

	PopupTemplate interact.Template `json:"-" toml:"-" yaml:"-"`
}

// SetDefaults fills unset fields.
func (c *BubblesConfig) SetDefaults() {
	setFloat(&c.BorderWidth, 2)
	if c.BorderColor == "" {
		c.BorderColor = "#FFFFFF"
	}
	if c.PopupOnHover == nil {
		c.PopupOnHover = boolPtr(true)
	}
	setFloat(&c.FillOpacity, 0.75)
	if c.Animate == nil {
		c.Animate = boolPtr(true)
	}
	if c.HighlightOnHover == nil {
		c.HighlightOnHover = boolPtr(true)
	}
	if c.HighlightFillColor == "" {
		c.HighlightFillColor = DefaultHighlightFillColor
	}
	if c.HighlightBorderColor == "" {
		c.HighlightBorderColor = DefaultHighlightBorderColor
	}
	setFloat(&c.HighlightBorderWidth, DefaultHighlightBorderWidth)
	setFloat(&c.HighlightFillOpacity, 0.85)
	setInt(&c.ExitDelay, 100)
	if c.PopupTemplate == nil {
		c.PopupTemplate = BubblePopup
	}
}

func (c *BubblesConfig) binding() interact.Binding {
	return interact.Binding{
		HighlightOnHover: isTrue(c.HighlightOnHover),
		PopupOnHover:     isTrue(c.PopupOnHover),
		Highlight: interact.Highlight{
			Fill:        c.HighlightFillColor,
			Stroke:      c.HighlightBorderColor,
			StrokeWidth: num(floatOf(c.HighlightBorderWidth)),
			FillOpacity: num(floatOf(c.HighlightFillOpacity)),
		},
		Template: c.PopupTemplate,
		NoRaise:  true,
	}
}

// ArcConfig styles the arc layer.
type ArcConfig struct {
	StrokeColor  string  `json:"strokeColor,omitempty" toml:"strokeColor" yaml:"strokeColor,omitempty"`
	StrokeWidth  *float64 `json:"strokeWidth,omitempty" toml:"strokeWidth" yaml:"strokeWidth,omitempty"`
	ArcSharpness *float64 `json:"arcSharpness,omitempty" toml:"arcSharpness" yaml:"arcSharpness,omitempty"`
	// AnimationSpeed is in milliseconds.
	AnimationSpeed *int `json:"animationSpeed,omitempty" toml:"animationSpeed" yaml:"animationSpeed,omitempty"`
}

// SetDefaults fills unset fields.
func (c *ArcConfig) SetDefaults() {
	if c.StrokeColor == "" {
		c.StrokeColor = "#DD1C77"
	}
	setFloat(&c.StrokeWidth, 1)
	setFloat(&c.ArcSharpness, 1)
	setInt(&c.AnimationSpeed, 600)
}

// LabelOptions styles region labels.
type LabelOptions struct {
	FontSize   float64 `json:"fontSize,omitempty" toml:"fontSize" yaml:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty" toml:"fontFamily" yaml:"fontFamily,omitempty"`
	LabelColor string  `json:"labelColor,omitempty" toml:"labelColor" yaml:"labelColor,omitempty"`
	LineWidth  float64 `json:"lineWidth,omitempty" toml:"lineWidth" yaml:"lineWidth,omitempty"`
}

// LegendOptions configures the fill legend.
type LegendOptions struct {
	LegendTitle     string            `json:"legendTitle,omitempty" toml:"legendTitle" yaml:"legendTitle,omitempty"`
	DefaultFillName string            `json:"defaultFillName,omitempty" toml:"defaultFillName" yaml:"defaultFillName,omitempty"`
	Labels          map[string]string `json:"labels,omitempty" toml:"labels" yaml:"labels,omitempty"`
}
