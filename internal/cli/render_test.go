package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mapsvg/pkg/config"
	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/errors"
)

func testContext() context.Context {
	return withLogger(context.Background(), newLogger(io.Discard, LogInfo))
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"json only", "json", []string{"json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid all", []string{"svg", "pdf", "png", "json"}, false},
		{"invalid format", []string{"gif"}, true},
		{"mixed valid invalid", []string{"svg", "gif"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("validateFormats(%v) code = %s, want INVALID_FORMAT", tt.formats, errors.GetCode(err))
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "", "map"},
		{"", "maps/election.toml", "maps/election"},
		{"out.svg", "election.toml", "out"},
		{"out.png", "", "out"},
		{"out", "", "out"},
		{"out.v2", "", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	dir := t.TempDir()
	bubbles := filepath.Join(dir, "bubbles.yaml")
	if err := os.WriteFile(bubbles, []byte("- centered: BRA\n  radius: 12\n- centered: FRA\n  radius: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	src, err := c.newSource(true, false)
	if err != nil {
		t.Fatal(err)
	}

	f := &config.File{Map: datamap.Options{Scope: "world", Fills: datamap.Fills{"LOW": "#fee08b"}}}
	opts := &renderOpts{
		projection:     "mercator",
		width:          800,
		fills:          map[string]string{"HIGH": "#d73027"},
		bubbles:        bubbles,
		legendTitle:    "Turnout",
		showAntarctica: true,
		labels:         true,
	}
	if err := applyFlags(testContext(), src, f, opts); err != nil {
		t.Fatalf("applyFlags() error: %v", err)
	}

	if f.Map.Projection != "mercator" || f.Map.Width != 800 || f.Map.Height != 0 {
		t.Errorf("projection/size = %s %vx%v", f.Map.Projection, f.Map.Width, f.Map.Height)
	}
	if f.Map.Fills["LOW"] != "#fee08b" || f.Map.Fills["HIGH"] != "#d73027" {
		t.Errorf("Fills = %v, want LOW and HIGH", f.Map.Fills)
	}
	if len(f.Bubbles) != 2 || f.Bubbles[0].Centered != "BRA" || f.Bubbles[1].Radius != 8 {
		t.Errorf("Bubbles = %+v", f.Bubbles)
	}
	if f.Legend == nil || f.Legend.LegendTitle != "Turnout" {
		t.Errorf("Legend = %+v, want title Turnout", f.Legend)
	}
	if f.Labels == nil {
		t.Error("Labels not enabled")
	}
	if h := f.Map.GeographyConfig.HideAntarctica; h == nil || *h {
		t.Errorf("HideAntarctica = %v, want false", h)
	}
}

func TestApplyFlagsBadList(t *testing.T) {
	dir := t.TempDir()
	arcs := filepath.Join(dir, "arcs.json")
	if err := os.WriteFile(arcs, []byte(`{"origin": "USA"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	src, _ := c.newSource(true, false)

	err := applyFlags(testContext(), src, &config.File{}, &renderOpts{arcs: arcs})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("applyFlags() error = %v, want INVALID_INPUT", err)
	}
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "votes.json")
	if err := os.WriteFile(data, []byte(`{"USA": {"fillKey": "HIGH"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	opts := &renderOpts{
		output:  filepath.Join(dir, "votes.svg"),
		formats: []string{"svg", "json"},
		fills:   map[string]string{"HIGH": "#D73027"},
		data:    data,
		legend:  true,
		noCache: true,
	}
	if err := c.runRender(testContext(), "", opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "votes.svg"))
	if err != nil {
		t.Fatalf("svg output: %v", err)
	}
	for _, want := range []string{`class="datamap"`, "#D73027", "datamaps-legend"} {
		if !strings.Contains(string(svg), want) {
			t.Errorf("svg output missing %q", want)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "votes.json"))
	if err != nil {
		t.Fatalf("json output: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Errorf("json output is not JSON: %v", err)
	}
}

func TestRunRenderMissingMapFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	err := c.runRender(testContext(), filepath.Join(t.TempDir(), "nope.toml"), &renderOpts{formats: []string{"svg"}, noCache: true})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("runRender() error = %v, want FILE_NOT_FOUND", err)
	}
}
