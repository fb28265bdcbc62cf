package sink

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

func testScene() *scene.Scene {
	s := scene.New(400, 200, "datamap")
	s.EnsureStyles(BaseStylesName, BaseStyles)

	regions := s.AddLayer("datamaps-subunits")
	usa := regions.Append("path", "USA")
	usa.SetAttr("d", "M0,0L10,0L10,10Z").SetAttr("class", "datamaps-subunit USA")
	usa.SetAttr("data-info", `{"fillKey":"low"}`)
	usa.SetStyle("fill", "#ABDDA4")
	usa.Animate(scene.Transition{Property: "fill", Style: true, From: "#ABDDA4", To: "#FEE08B", Duration: 250 * time.Millisecond})

	bubbles := s.AddLayer("bubbles")
	gone := bubbles.Append("circle", "old")
	gone.SetAttr("cx", "5").SetAttr("cy", "5")
	gone.Animate(scene.Transition{Property: "r", From: "10", To: "0", Delay: 100 * time.Millisecond, Duration: 250 * time.Millisecond, Remove: true})
	bubbles.Exit(gone)

	labels := s.AddLayer("labels")
	labels.Append("text", "USA").SetAttr("x", "1").Text = "A&B"

	tip := s.EnsureTooltip("datamaps-hoverover")
	tip.HTML = `<div class="hoverinfo"><strong>USA</strong></div>`
	return s
}

func TestRenderSVG(t *testing.T) {
	out := string(RenderSVG(testScene(), WithInteraction(), WithTitle("Map")))

	checks := []string{
		`<svg xmlns="http://www.w3.org/2000/svg" class="datamap" viewBox="0 0 400 200" width="400" height="200"`,
		`<title>Map</title>`,
		`.datamap path {stroke: #FFFFFF; stroke-width: 1px;}`,
		`<g class="datamaps-subunits">`,
		`data-info="{&#34;fillKey&#34;:&#34;low&#34;}"`,
		`@keyframes mapsvg-0 { from { fill: #ABDDA4; } to { fill: #FEE08B; } }`,
		`animation: mapsvg-0 250ms ease 0ms backwards`,
		`@keyframes mapsvg-1 { from { r: 10px; } to { r: 0; } }`,
		`animation: mapsvg-1 250ms ease 100ms backwards`,
		`>A&amp;B</text>`,
		`class="datamaps-hoverover"`,
		`display: none`,
		`<![CDATA[`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("RenderSVG() not closed")
	}
}

func TestRenderSVGStatic(t *testing.T) {
	out := string(RenderSVG(testScene(), WithInteraction(), WithStatic()))
	for _, unwanted := range []string{"@keyframes", "animation:", "<script", "foreignObject", `cx="5"`} {
		if strings.Contains(out, unwanted) {
			t.Errorf("static RenderSVG() contains %q", unwanted)
		}
	}
	if !strings.Contains(out, "fill: #FEE08B") {
		t.Error("static RenderSVG() missing final fill")
	}
}

func TestRenderSVGWellFormed(t *testing.T) {
	out := RenderSVG(testScene(), WithInteraction())
	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("RenderSVG() is not well-formed XML: %v", err)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testScene(), WithJSONExiting(), WithJSONMeta(map[string]any{"scope": "world"}))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Width != 400 || out.Height != 200 {
		t.Errorf("size = %vx%v, want 400x200", out.Width, out.Height)
	}
	if len(out.Layers) != 3 {
		t.Fatalf("len(Layers) = %d, want 3", len(out.Layers))
	}
	usa := out.Layers[0].Elements[0]
	if usa.Style["fill"] != "#FEE08B" || len(usa.Transitions) != 1 {
		t.Errorf("USA element = %+v", usa)
	}
	bubbles := out.Layers[1].Elements
	if len(bubbles) != 1 || !bubbles[0].Exiting || !bubbles[0].Transitions[0].Remove {
		t.Errorf("bubbles = %+v, want one exiting", bubbles)
	}
	if out.Meta["scope"] != "world" {
		t.Errorf("Meta = %v", out.Meta)
	}
	if out.Tooltip == nil || out.Tooltip.Visible {
		t.Errorf("Tooltip = %+v", out.Tooltip)
	}

	data, _ = RenderJSON(testScene())
	var plain jsonOutput
	_ = json.Unmarshal(data, &plain)
	if n := len(plain.Layers[1].Elements); n != 0 {
		t.Errorf("exiting elements without WithJSONExiting = %d, want 0", n)
	}
}
