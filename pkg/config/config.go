// Package config loads map descriptions from TOML, YAML or JSON files and
// server settings from the environment.
//
// A map file holds the map options plus the plugin layers to draw on top:
//
//	[map]
//	scope = "world"
//
//	[map.fills]
//	defaultFill = "#ABDDA4"
//	high = "#D73027"
//
//	[map.data.USA]
//	fillKey = "high"
//
//	[[bubbles]]
//	centered = "BRA"
//	radius = 12
//
// The decoder is picked from the file extension; see [Load].
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
)

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// File is a map description: the options to draw with and the layers to add.
type File struct {
	Map     datamap.Options       `json:"map" toml:"map" yaml:"map"`
	Bubbles []layers.Bubble       `json:"bubbles,omitempty" toml:"bubbles" yaml:"bubbles,omitempty"`
	Arcs    []layers.Arc          `json:"arcs,omitempty" toml:"arcs" yaml:"arcs,omitempty"`
	Labels  *layers.LabelOptions  `json:"labels,omitempty" toml:"labels" yaml:"labels,omitempty"`
	Legend  *layers.LegendOptions `json:"legend,omitempty" toml:"legend" yaml:"legend,omitempty"`
}

// FormatOf returns the format implied by a file name's extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported config file %q (want .toml, .yaml, .yml or .json)", path)
}

// Load reads and decodes the map file at path.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config file %s", path)
	}
	var f File
	if err := Decode(data, format, &f); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "config file %s", path)
	}
	return &f, nil
}

// Decode unmarshals data in the given format into v.
func Decode(data []byte, format string, v any) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return nil
}

// Draw creates the map and adds the file's layers in order: bubbles, arcs,
// labels, legend.
func (f *File) Draw(ctx context.Context, opts ...datamap.Option) (*datamap.Map, error) {
	m, err := datamap.New(ctx, f.Map, opts...)
	if err != nil {
		return nil, err
	}
	if len(f.Bubbles) > 0 {
		if _, err := m.Bubbles(f.Bubbles, nil); err != nil {
			return nil, err
		}
	}
	if len(f.Arcs) > 0 {
		if _, err := m.Arcs(f.Arcs, nil); err != nil {
			return nil, err
		}
	}
	if f.Labels != nil {
		if err := m.Labels(*f.Labels); err != nil {
			return nil, err
		}
	}
	if f.Legend != nil {
		if err := m.Legend(*f.Legend); err != nil {
			return nil, err
		}
	}
	return m, nil
}
