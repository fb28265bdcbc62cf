package datamap

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/geo/topology"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
	"github.com/matzehuels/mapsvg/pkg/source"
)

// Default canvas size.
const (
	DefaultWidth  = 960
	DefaultHeight = 600
)

// Fills maps fill keys to colours. It always holds defaultFill once
// defaults are applied.
type Fills = layers.Fills

// Entry is the data of one region. fillKey and color are recognised; any
// other field is kept for popups.
type Entry = map[string]any

// RegionData maps region ids to their entries.
type RegionData map[string]Entry

// Options configure a map. Unset fields select the defaults listed per
// field; layer options that may be 0 are pointers, so an explicit 0 is
// kept. Options decode from JSON, TOML and YAML.
type Options struct {
	// Scope selects the projection family and the topology object: "world"
	// (default), "usa" or the name of an object in a custom topology.
	Scope string `json:"scope,omitempty" toml:"scope" yaml:"scope,omitempty"`
	// Projection names the world-family algorithm (default equirectangular).
	Projection string  `json:"projection,omitempty" toml:"projection" yaml:"projection,omitempty"`
	Width      float64 `json:"width,omitempty" toml:"width" yaml:"width,omitempty"`
	Height     float64 `json:"height,omitempty" toml:"height" yaml:"height,omitempty"`

	Fills Fills      `json:"fills,omitempty" toml:"fills" yaml:"fills,omitempty"`
	Data  RegionData `json:"data,omitempty" toml:"data" yaml:"data,omitempty"`

	// DataURL is a file or URL with region data applied after the first
	// draw. DataType is "json" (default) or "csv".
	DataURL  string `json:"dataUrl,omitempty" toml:"dataUrl" yaml:"dataUrl,omitempty"`
	DataType string `json:"dataType,omitempty" toml:"dataType" yaml:"dataType,omitempty"`

	GeographyConfig layers.GeographyConfig `json:"geographyConfig" toml:"geographyConfig" yaml:"geographyConfig"`
	BubblesConfig   layers.BubblesConfig   `json:"bubblesConfig" toml:"bubblesConfig" yaml:"bubblesConfig"`
	ArcConfig       layers.ArcConfig       `json:"arcConfig" toml:"arcConfig" yaml:"arcConfig"`

	DisableDefaultStyles bool `json:"disableDefaultStyles,omitempty" toml:"disableDefaultStyles" yaml:"disableDefaultStyles,omitempty"`

	// Topology replaces the embedded or fetched topology.
	Topology *topology.Topology `json:"-" toml:"-" yaml:"-"`
	// Done is called once after the first successful draw.
	Done func(*Map) `json:"-" toml:"-" yaml:"-"`
	// Logger receives draw logs. Defaults to log.Default().
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`
}

// SetDefaults fills unset fields. A zero width or height is not a usable
// canvas and selects the default size.
func (o *Options) SetDefaults() {
	if o.Scope == "" {
		o.Scope = projection.ScopeWorld
	}
	if o.Projection == "" && o.Scope != projection.ScopeUSA {
		o.Projection = projection.DefaultAlgorithm
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	o.Fills = o.Fills.WithDefault()
	if o.DataType == "" {
		o.DataType = source.JSON
	}
	o.GeographyConfig.SetDefaults()
	o.BubblesConfig.SetDefaults()
	o.ArcConfig.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Validate checks options after defaults are applied.
func (o *Options) Validate() error {
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateFills(o.Fills); err != nil {
		return err
	}
	switch strings.ToLower(o.DataType) {
	case source.JSON, source.CSV:
	default:
		return errors.New(errors.ErrCodeInvalidOptions, "dataType must be json or csv, got %q", o.DataType)
	}
	for id := range o.Data {
		if err := errors.ValidateRegionID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOptions, err, "data")
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Formats lists the formats Render accepts.
var Formats = []string{"svg", "json", "png", "pdf"}

func unsupportedFormat(format string) error {
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %v)", format, Formats)
}
