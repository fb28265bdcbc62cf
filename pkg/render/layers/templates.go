package layers

import (
	"fmt"
	"html"

	"github.com/matzehuels/mapsvg/pkg/geo/topology"
)

// GeographyPopup is the default region tooltip: the region name in bold.
func GeographyPopup(datum any, _ map[string]any) string {
	name := ""
	switch d := datum.(type) {
	case topology.Feature:
		name = d.Name
	case *topology.Feature:
		name = d.Name
	case string:
		name = d
	}
	return `<div class="hoverinfo"><strong>` + html.EscapeString(name) + `</strong></div>`
}

// BubblePopup is the default bubble tooltip: the datum's "name" in bold.
func BubblePopup(datum any, _ map[string]any) string {
	name := ""
	if m, ok := datum.(map[string]any); ok {
		if v, ok := m["name"]; ok && v != nil {
			name = fmt.Sprint(v)
		}
	}
	return `<div class="hoverinfo"><strong>` + html.EscapeString(name) + `</strong></div>`
}
