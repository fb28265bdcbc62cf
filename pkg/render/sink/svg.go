package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// BaseStylesName is the style block every map registers once.
const BaseStylesName = "datamaps"

// BaseStyles is the default stylesheet of a map.
const BaseStyles = `.datamap path {stroke: #FFFFFF; stroke-width: 1px;} .datamaps-legend dt, .datamaps-legend dd { float: left; margin: 0 3px 0 0;} .datamaps-legend dd {width: 20px; margin-right: 6px; border-radius: 3px;} .datamaps-legend {padding-bottom: 20px; z-index: 1001; position: absolute; left: 4px; font-size: 12px; font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;} .datamaps-hoverover {display: none; font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; } .hoverinfo {padding: 4px; border-radius: 1px; background-color: #FFF; box-shadow: 1px 1px 5px #CCC; font-size: 12px; border: 1px solid #CCC; } .hoverinfo hr {border:1px dotted #CCC; }`

const hoverJS = `
    (function () {
      var svg = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg.datamap');
      if (!svg) return;
      var tip = svg.querySelector('.` + interact.TooltipClass + `');
      var keys = ['fill', 'stroke', 'stroke-width', 'fill-opacity'];
      function show(el, e) {
        var html = el.getAttribute('` + interact.AttrPopup + `');
        if (!tip || !html) return;
        var pt = svg.createSVGPoint(); pt.x = e.clientX; pt.y = e.clientY;
        var p = pt.matrixTransform(svg.getScreenCTM().inverse());
        tip.innerHTML = html;
        tip.style.top = (p.y + 30) + 'px';
        tip.style.left = p.x + 'px';
        tip.style.display = 'block';
      }
      svg.querySelectorAll('[` + interact.AttrHighlight + `], [` + interact.AttrPopup + `]').forEach(function (el) {
        el.addEventListener('mouseover', function (e) {
          var hl = el.getAttribute('` + interact.AttrHighlight + `');
          if (hl) {
            var prev = {};
            keys.forEach(function (k) { prev[k] = el.style.getPropertyValue(k); });
            el.setAttribute('` + interact.AttrPrevious + `', JSON.stringify(prev));
            hl = JSON.parse(hl);
            keys.forEach(function (k) { if (hl[k]) el.style.setProperty(k, hl[k]); });
            if (!el.hasAttribute('` + interact.AttrNoRaise + `')) el.parentNode.appendChild(el);
          }
          show(el, e);
        });
        el.addEventListener('mousemove', function (e) { show(el, e); });
        el.addEventListener('mouseout', function () {
          var prev = el.getAttribute('` + interact.AttrPrevious + `');
          if (el.hasAttribute('` + interact.AttrHighlight + `') && prev) {
            prev = JSON.parse(prev);
            keys.forEach(function (k) { el.style.setProperty(k, prev[k]); });
          }
          if (tip) tip.style.display = 'none';
        });
      });
    })();`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	static      bool
	interactive bool
	title       string
}

// WithStatic drops animations, exiting elements and the hover script, for
// rasterisers that cannot run them.
func WithStatic() SVGOption { return func(r *svgRenderer) { r.static = true } }

// WithInteraction embeds the hover script. Without it the document still
// carries its data-* attributes but nothing reacts to the pointer.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithTitle sets the document title element.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG serialises a scene. Pending transitions become CSS keyframe
// animations that start from the recorded value; elements always carry
// their final values so the document is correct once animations end.
func RenderSVG(s *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	w, h := num(s.Width), num(s.Height)
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" class="%s" viewBox="0 0 %s %s" width="%s" height="%s" style="overflow: hidden">`+"\n",
		escape(s.Class), w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}

	anims := &animations{}
	var body bytes.Buffer
	for _, l := range s.Layers() {
		fmt.Fprintf(&body, `  <g class="%s">`+"\n", escape(l.Class))
		for _, el := range l.Elements() {
			writeElement(&body, el, anims, r.static)
		}
		if !r.static {
			for _, el := range l.Exiting() {
				writeElement(&body, el, anims, false)
			}
		}
		body.WriteString("  </g>\n")
	}

	renderStyles(&buf, s.Styles(), anims)
	buf.Write(body.Bytes())

	if t := s.Tooltip(); t != nil && !r.static {
		renderTooltip(&buf, s, t)
	}
	if r.interactive && !r.static {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", hoverJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

type animations struct {
	keyframes []string
}

func (a *animations) add(t scene.Transition) string {
	name := "mapsvg-" + strconv.Itoa(len(a.keyframes))
	a.keyframes = append(a.keyframes, fmt.Sprintf("@keyframes %s { from { %s: %s; } to { %s: %s; } }",
		name, t.Property, cssValue(t.Property, t.From), t.Property, cssValue(t.Property, t.To)))

	easing := t.Easing
	if easing == "" {
		easing = "ease"
	}
	return fmt.Sprintf("%s %dms %s %dms backwards", name, t.Duration.Milliseconds(), easing, t.Delay.Milliseconds())
}

func renderStyles(buf *bytes.Buffer, blocks []scene.StyleBlock, anims *animations) {
	if len(blocks) == 0 && len(anims.keyframes) == 0 {
		return
	}
	buf.WriteString("  <style>\n")
	for _, b := range blocks {
		fmt.Fprintf(buf, "    %s\n", b.CSS)
	}
	for _, k := range anims.keyframes {
		fmt.Fprintf(buf, "    %s\n", k)
	}
	buf.WriteString("  </style>\n")
}

func writeElement(buf *bytes.Buffer, el *scene.Element, anims *animations, static bool) {
	fmt.Fprintf(buf, "    <%s", el.Tag)
	for _, a := range el.Attrs() {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, escape(a.Value))
	}

	style := el.StyleString()
	if !static {
		var running []string
		for _, t := range el.Transitions() {
			if t.From == "" || t.Duration <= 0 {
				continue
			}
			running = append(running, anims.add(t))
		}
		if len(running) > 0 {
			if style != "" {
				style += "; "
			}
			style += "animation: " + strings.Join(running, ", ")
		}
	}
	if style != "" {
		fmt.Fprintf(buf, ` style="%s"`, escape(style))
	}

	if el.Text == "" {
		buf.WriteString("/>\n")
		return
	}
	fmt.Fprintf(buf, ">%s</%s>\n", escape(el.Text), el.Tag)
}

func renderTooltip(buf *bytes.Buffer, s *scene.Scene, t *scene.Tooltip) {
	display := "none"
	if t.Visible {
		display = "block"
	}
	fmt.Fprintf(buf, `  <foreignObject x="0" y="0" width="%s" height="%s" pointer-events="none">`+"\n",
		num(s.Width), num(s.Height))
	fmt.Fprintf(buf, `    <div xmlns="http://www.w3.org/1999/xhtml" class="%s" style="position: absolute; top: %spx; left: %spx; display: %s">%s</div>`+"\n",
		escape(t.Class), num(t.Y), num(t.X), display, t.HTML)
	buf.WriteString("  </foreignObject>\n")
}

// geometryProps are animated as CSS lengths.
var geometryProps = map[string]bool{"r": true, "cx": true, "cy": true, "x": true, "y": true}

func cssValue(prop, v string) string {
	if geometryProps[prop] && v != "0" {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v + "px"
		}
	}
	return v
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
