package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PathData serialises a projected geometry as SVG path data. Rings are
// closed with Z; coordinates are rounded to two decimals.
func PathData(g orb.Geometry) string {
	var b strings.Builder
	writePath(&b, g)
	return b.String()
}

func writePath(b *strings.Builder, g orb.Geometry) {
	switch g := g.(type) {
	case orb.LineString:
		writePoints(b, g, false)
	case orb.Ring:
		writePoints(b, g, true)
	case orb.Polygon:
		for _, r := range g {
			writePoints(b, r, true)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			writePath(b, p)
		}
	case orb.Collection:
		for _, c := range g {
			writePath(b, c)
		}
	}
}

func writePoints(b *strings.Builder, pts []orb.Point, closed bool) {
	n := len(pts)
	if closed && n > 1 && pts[0] == pts[n-1] {
		n--
	}
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(Num(pts[i][0]))
		b.WriteByte(',')
		b.WriteString(Num(pts[i][1]))
	}
	if closed {
		b.WriteByte('Z')
	}
}

// Num formats a coordinate rounded to two decimals without trailing zeros.
func Num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Centroid returns the area-weighted centroid of a projected geometry,
// falling back to the centroid of its outline for degenerate shapes.
func Centroid(g orb.Geometry) (x, y float64, ok bool) {
	if g == nil {
		return 0, 0, false
	}
	if c, ok := g.(orb.Collection); ok && len(c) == 0 {
		return 0, 0, false
	}
	c, _ := planar.CentroidArea(g)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return 0, 0, false
	}
	return c[0], c[1], true
}
