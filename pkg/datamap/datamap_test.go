package datamap

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/geo/topology"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
	"github.com/matzehuels/mapsvg/pkg/render/sink"
)

const shapes = `{
  "type": "Topology",
  "objects": {
    "shapes": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": "AA", "properties": {"name": "Alpha"}, "arcs": [[0]]},
        {"type": "Polygon", "id": "BB", "properties": {"name": "Bravo"}, "arcs": [[1]]}
      ]
    }
  },
  "arcs": [
    [[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]],
    [[20, 0], [30, 0], [30, 10], [20, 10], [20, 0]]
  ]
}`

var quiet = log.New(io.Discard)

func newWorld(t *testing.T, opts Options) *Map {
	t.Helper()
	opts.Logger = quiet
	m, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m
}

func newShapes(t *testing.T, opts Options) *Map {
	t.Helper()
	topo, err := topology.Decode([]byte(shapes))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	opts.Scope = "shapes"
	opts.Topology = topo
	return newWorld(t, opts)
}

func TestNewDefaultFill(t *testing.T) {
	m := newWorld(t, Options{})

	if len(m.Features()) < 100 {
		t.Fatalf("Features() = %d, want the world", len(m.Features()))
	}
	for _, id := range m.Regions() {
		if id == "ATA" {
			t.Error("Antarctica drawn with hideAntarctica default")
		}
		if fill, _ := m.Fill(id); fill != layers.DefaultFillColor {
			t.Errorf("Fill(%s) = %s, want %s", id, fill, layers.DefaultFillColor)
		}
	}
}

func TestNewFillKeyScenario(t *testing.T) {
	m := newWorld(t, Options{
		Fills: Fills{"defaultFill": "#ABDDA4", "low": "#FEE08B"},
		Data:  RegionData{"USA": {"fillKey": "low"}, "CAN": {"fillKey": "missing"}},
	})

	tests := []struct{ id, want string }{
		{"USA", "#FEE08B"},
		{"CAN", "#ABDDA4"},
		{"FRA", "#ABDDA4"},
	}
	for _, tt := range tests {
		if got, _ := m.Fill(tt.id); got != tt.want {
			t.Errorf("Fill(%s) = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestNewShowAntarctica(t *testing.T) {
	m := newWorld(t, Options{GeographyConfig: layers.GeographyConfig{HideAntarctica: new(bool)}})
	if _, ok := m.Fill("ATA"); !ok {
		t.Error("Antarctica missing with hideAntarctica=false")
	}
}

func TestNewDone(t *testing.T) {
	calls := 0
	var got *Map
	m := newWorld(t, Options{Done: func(m *Map) { calls++; got = m }})
	if calls != 1 || got != m {
		t.Errorf("Done called %d times with %p, want once with %p", calls, got, m)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"usa without topology", Options{Scope: "usa"}, errors.ErrCodeUnsupportedScope},
		{"unknown projection", Options{Projection: "peirce"}, errors.ErrCodeInvalidProjection},
		{"bad data type", Options{DataType: "xml"}, errors.ErrCodeInvalidOptions},
		{"bad fill", Options{Fills: Fills{"low": "not a colour!"}}, errors.ErrCodeInvalidOptions},
		{"negative size", Options{Width: -1}, errors.ErrCodeInvalidOptions},
		{"missing object", Options{Scope: "countries"}, errors.ErrCodeUnsupportedScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quiet
			done := false
			tt.opts.Done = func(*Map) { done = true }
			_, err := New(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
			if done {
				t.Error("Done called on failure")
			}
		})
	}
}

func TestBaseStyles(t *testing.T) {
	m := newShapes(t, Options{})
	if n := len(m.Scene().Styles()); n != 1 {
		t.Errorf("styles = %d, want 1", n)
	}
	if m.Scene().EnsureStyles(sink.BaseStylesName, sink.BaseStyles) {
		t.Error("base styles added twice")
	}

	off := newShapes(t, Options{DisableDefaultStyles: true})
	if n := len(off.Scene().Styles()); n != 0 {
		t.Errorf("styles with DisableDefaultStyles = %d, want 0", n)
	}
}

func TestLatLngToXY(t *testing.T) {
	m := newShapes(t, Options{Width: 960, Height: 600})
	x, y, ok := m.LatLngToXY(0, 0)
	if !ok || math.Abs(x-480) > 1e-9 || math.Abs(y-600/1.8) > 1e-9 {
		t.Errorf("LatLngToXY(0, 0) = (%v, %v, %v), want (480, 333.33, true)", x, y, ok)
	}
	x2, y2, _ := m.LatLngToXY(0, 0)
	if x != x2 || y != y2 {
		t.Error("LatLngToXY() not deterministic")
	}
}

func TestUpdateChoropleth(t *testing.T) {
	m := newShapes(t, Options{Fills: Fills{"high": "#D73027"}})

	changed := m.UpdateChoropleth(map[string]any{
		"AA": "#123456",
		"BB": map[string]any{"fillKey": "high", "votes": 3},
		"ZZ": map[string]any{"fillKey": "high"},
		"":   "#000000",
	})
	if strings.Join(changed, ",") != "AA,BB" {
		t.Errorf("UpdateChoropleth() = %v, want [AA BB]", changed)
	}
	if got, _ := m.Fill("AA"); got != "#123456" {
		t.Errorf("Fill(AA) = %s", got)
	}
	if got, _ := m.Fill("BB"); got != "#D73027" {
		t.Errorf("Fill(BB) = %s", got)
	}

	m.UpdateChoropleth(map[string]any{"BB": map[string]any{"votes": 4}})
	entry, _ := m.Data("BB")
	if entry["fillKey"] != "high" || entry["votes"] != 4 {
		t.Errorf("merged entry = %v, want fillKey kept and votes updated", entry)
	}
}

func TestBubblesLifecycle(t *testing.T) {
	m := newWorld(t, Options{})
	lat, lng := 40.7, -74.0
	data := []layers.Bubble{{Latitude: &lat, Longitude: &lng, Radius: 10}}

	diff, err := m.Bubbles(data, nil)
	if err != nil {
		t.Fatalf("Bubbles() error: %v", err)
	}
	if len(diff.Entered) != 1 {
		t.Fatalf("Entered = %v, want 1", diff.Entered)
	}

	again, _ := m.Bubbles(data, nil)
	if !again.Empty() {
		t.Errorf("second identical call diff = %+v, want empty", again)
	}
	if svg := string(m.SVG()); strings.Contains(svg, "animation:") {
		t.Error("SVG after an unchanged Bubbles() call still animates the kept bubble")
	}

	gone, err := m.Bubbles([]layers.Bubble{}, nil)
	if err != nil {
		t.Fatalf("Bubbles([]) error: %v", err)
	}
	if len(gone.Exited) != 1 {
		t.Errorf("Exited = %v, want 1", gone.Exited)
	}
	layer := m.PluginLayer("bubbles")
	if layer.Len() != 0 || len(layer.Exiting()) != 1 {
		t.Fatalf("live = %d, exiting = %d; want 0, 1", layer.Len(), len(layer.Exiting()))
	}
	tr, ok := layer.Exiting()[0].Transition("r")
	if !ok || tr.To != "0" || !tr.Remove {
		t.Errorf("exit transition = %+v, want r -> 0 with removal", tr)
	}
}

func TestBubblesUseMapConfig(t *testing.T) {
	m := newWorld(t, Options{BubblesConfig: layers.BubblesConfig{BorderColor: "#000000"}})
	if _, err := m.Bubbles([]layers.Bubble{{Centered: "BRA", Radius: 5}}, nil); err != nil {
		t.Fatalf("Bubbles() error: %v", err)
	}
	el := m.PluginLayer("bubbles").Elements()[0]
	if s, _ := el.Style("stroke"); s != "#000000" {
		t.Errorf("stroke = %s, want map-level #000000", s)
	}
}

func TestBubblesErrors(t *testing.T) {
	m := newWorld(t, Options{})
	if _, err := m.Bubbles(map[string]any{"a": 1}, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Bubbles(object) error = %v, want INVALID_INPUT", err)
	}
	if _, err := m.Bubbles([]layers.Bubble{{Radius: 3}}, nil); !errors.Is(err, errors.ErrCodeMissingPosition) {
		t.Errorf("Bubbles(unpositioned) error = %v, want MISSING_POSITION", err)
	}
	if _, err := m.Arcs("nope", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Arcs(string) error = %v, want INVALID_INPUT", err)
	}
}

func TestArcs(t *testing.T) {
	m := newWorld(t, Options{})
	arcs := []layers.Arc{{
		Origin:      layers.LatLng{Latitude: 40.7, Longitude: -74},
		Destination: layers.LatLng{Latitude: 51.5, Longitude: -0.1},
	}}
	diff, err := m.Arcs(arcs, map[string]any{"strokeColor": "#0000FF"})
	if err != nil {
		t.Fatalf("Arcs() error: %v", err)
	}
	if len(diff.Entered) != 1 {
		t.Fatalf("Entered = %v", diff.Entered)
	}
	el := m.PluginLayer("arc").Elements()[0]
	if s, _ := el.Style("stroke"); s != "#0000FF" {
		t.Errorf("stroke = %s, want #0000FF", s)
	}
	if _, ok := el.Transition("stroke-dashoffset"); !ok {
		t.Error("arc has no dash reveal")
	}
}

func TestPluginMemoisesLayer(t *testing.T) {
	m := newWorld(t, Options{})
	var seen []*scene.Layer
	call := PluginCall{Callback: func(l *scene.Layer) { seen = append(seen, l) }}

	if _, err := m.Plugin("bubbles", []layers.Bubble{{Centered: "BRA", Radius: 1}}, nil, call); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Plugin("bubbles", []layers.Bubble{{Centered: "FRA", Radius: 1}}, nil, call); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatalf("callbacks = %d with layers %v, want the same layer twice", len(seen), seen)
	}

	call.NewLayer = true
	if _, err := m.Plugin("bubbles", []layers.Bubble{{Centered: "BRA", Radius: 1}}, nil, call); err != nil {
		t.Fatal(err)
	}
	if seen[2] == seen[0] {
		t.Error("NewLayer reused the memoised layer")
	}
	if m.PluginLayer("bubbles") != seen[2] {
		t.Error("new layer not memoised")
	}

	if _, err := m.Plugin("heatmap", nil, nil, PluginCall{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Plugin(heatmap) error = %v, want NOT_FOUND", err)
	}
}

func TestRegisterPlugin(t *testing.T) {
	m := newShapes(t, Options{})
	m.RegisterPlugin("dots", layers.PluginFunc(func(rc *layers.Context, layer *scene.Layer, data any, _ any) (layers.Diff, error) {
		layer.Clear()
		for _, id := range rc.Subunits.IDs() {
			x, y, _ := rc.Subunits.Centroid(id)
			layer.Append("circle", id).SetAttr("cx", projection.Num(x)).SetAttr("cy", projection.Num(y))
		}
		return layers.Diff{}, nil
	}))
	if _, err := m.Plugin("dots", nil, nil, PluginCall{}); err != nil {
		t.Fatalf("Plugin(dots) error: %v", err)
	}
	if n := m.PluginLayer("dots").Len(); n != 2 {
		t.Errorf("dots = %d, want 2", n)
	}
}

func TestLabelsAndLegend(t *testing.T) {
	m := newShapes(t, Options{Fills: Fills{"high": "#D73027"}})
	if err := m.Labels(layers.LabelOptions{}); err != nil {
		t.Fatalf("Labels() error: %v", err)
	}
	if err := m.Legend(layers.LegendOptions{LegendTitle: "Votes"}); err != nil {
		t.Fatalf("Legend() error: %v", err)
	}
	if m.PluginLayer("labels").Select("AA") == nil {
		t.Error("no label for AA")
	}
	if m.PluginLayer("legend").Select("dd-high") == nil {
		t.Error("no legend swatch for high")
	}
}

func TestHover(t *testing.T) {
	m := newWorld(t, Options{})

	if err := m.Hover("USA", interact.Point{X: 100, Y: 40}); err != nil {
		t.Fatalf("Hover() error: %v", err)
	}
	if got, _ := m.Fill("USA"); got != layers.DefaultHighlightFillColor {
		t.Errorf("hovered fill = %s, want %s", got, layers.DefaultHighlightFillColor)
	}
	if h := m.Hovered(); len(h) != 1 || h[0] != "USA" {
		t.Errorf("Hovered() = %v", h)
	}
	tip := m.Scene().Tooltip()
	if tip == nil || !tip.Visible || tip.X != 100 || tip.Y != 70 {
		t.Errorf("tooltip = %+v, want visible at (100, 70)", tip)
	}
	if !strings.Contains(tip.HTML, "United States") {
		t.Errorf("tooltip HTML = %q", tip.HTML)
	}

	if err := m.Move("USA", interact.Point{X: 120, Y: 50}); err != nil {
		t.Fatal(err)
	}
	if tip.X != 120 || tip.Y != 80 {
		t.Errorf("tooltip after Move at (%v, %v), want (120, 80)", tip.X, tip.Y)
	}

	if err := m.Unhover("USA"); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Fill("USA"); got != layers.DefaultFillColor {
		t.Errorf("restored fill = %s, want %s", got, layers.DefaultFillColor)
	}
	if tip.Visible {
		t.Error("tooltip visible after Unhover")
	}
	if err := m.Unhover("USA"); err != nil {
		t.Errorf("second Unhover() error: %v", err)
	}
	if err := m.Hover("XXX", interact.Point{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Hover(XXX) error = %v, want NOT_FOUND", err)
	}
}

func TestRemoteSources(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/shapes.json", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, shapes) })
	mux.HandleFunc("/votes.csv", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "id,fillKey,votes\nAA,high,12\n")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := newWorld(t, Options{
		Scope:           "shapes",
		Fills:           Fills{"high": "#D73027"},
		GeographyConfig: layers.GeographyConfig{DataURL: srv.URL + "/shapes.json"},
		DataURL:         srv.URL + "/votes.csv",
		DataType:        "csv",
	})
	if got, _ := m.Fill("AA"); got != "#D73027" {
		t.Errorf("Fill(AA) = %s, want #D73027", got)
	}
	if got, _ := m.Fill("BB"); got != layers.DefaultFillColor {
		t.Errorf("Fill(BB) = %s, want default", got)
	}
	if entry, _ := m.Data("AA"); entry["votes"] != "12" {
		t.Errorf("Data(AA) = %v", entry)
	}

	_, err := New(context.Background(), Options{
		Scope:           "shapes",
		Logger:          quiet,
		GeographyConfig: layers.GeographyConfig{DataURL: srv.URL + "/missing.json"},
	})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("New(missing topology) error = %v, want NOT_FOUND", err)
	}
}

func TestSVGOutput(t *testing.T) {
	m := newShapes(t, Options{})
	out := string(m.SVG(sink.WithInteraction()))
	for _, want := range []string{
		`class="datamap"`,
		`class="datamaps-subunit AA"`,
		`data-highlight=`,
		`data-popup=`,
		`Alpha`,
		`datamaps-hoverover`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG() missing %q", want)
		}
	}
}

func TestRender(t *testing.T) {
	m := newShapes(t, Options{})
	data, err := m.Render(context.Background(), "json", false)
	if err != nil {
		t.Fatalf("Render(json) error: %v", err)
	}
	if !strings.Contains(string(data), `"scope": "shapes"`) {
		t.Errorf("Render(json) missing scope meta")
	}
	if _, err := m.Render(context.Background(), "gif", false); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(gif) error = %v, want INVALID_FORMAT", err)
	}
}
