// Package projection maps geographic coordinates onto the SVG canvas.
//
// A [Handle] is configured once per draw from the canvas size, the map scope
// and the projection algorithm, and is then shared read-only by every layer
// of that draw. Two families exist:
//
//   - Composite-regional ("usa"): an Albers USA composite that draws the lower
//     48 states, Alaska and Hawaii as insets of one projection, scaled to the
//     canvas width and centred on the canvas.
//   - World-family (any other scope): a named raw projection (default
//     equirectangular) scaled to (width+1)/2π and translated to
//     (width/2, height/1.8), or height/1.45 for mercator.
//
// Projection is deterministic: identical inputs and canvas dimensions give
// identical output.
package projection

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/mapsvg/pkg/errors"
)

const (
	// ScopeUSA selects the composite Albers USA projection.
	ScopeUSA = "usa"
	// ScopeWorld is the default world-family scope.
	ScopeWorld = "world"
	// DefaultAlgorithm is used when no world-family algorithm is named.
	DefaultAlgorithm = "equirectangular"
)

// projector is implemented by the single and composite transforms.
type projector interface {
	point(lng, lat float64) (orb.Point, bool)
	polygon(p orb.Polygon) (orb.Polygon, bool)
}

// Handle projects coordinates and geometries for one canvas.
type Handle struct {
	width, height float64
	scope         string
	algorithm     string
	p             projector
}

// Configure builds the projection for a canvas. Scope "usa" selects the
// composite projection and ignores algorithm; any other non-empty scope is
// world-family. An empty scope fails with ErrCodeUnsupportedScope and an
// unknown algorithm with ErrCodeInvalidProjection.
func Configure(width, height float64, scope, algorithm string) (*Handle, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	if scope == "" {
		return nil, errors.New(errors.ErrCodeUnsupportedScope, "scope cannot be empty")
	}

	h := &Handle{width: width, height: height, scope: scope}
	if scope == ScopeUSA {
		h.algorithm = "albersUsa"
		h.p = newAlbersUSA(width, width/2, height/2)
		return h, nil
	}

	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	ps, ok := presets[algorithm]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidProjection, "unknown projection %q", algorithm)
	}
	ty := height / 1.8
	if algorithm == "mercator" {
		ty = height / 1.45
	}
	h.algorithm = algorithm
	h.p = newTransform(ps, (width+1)/2/math.Pi, width/2, ty)
	return h, nil
}

// Scope returns the scope the handle was configured for.
func (h *Handle) Scope() string { return h.scope }

// Algorithm returns the projection algorithm in use ("albersUsa" for the
// composite scope).
func (h *Handle) Algorithm() string { return h.algorithm }

// Size returns the canvas dimensions.
func (h *Handle) Size() (width, height float64) { return h.width, h.height }

// Project maps a longitude/latitude pair to canvas coordinates. ok is false
// when the point has no finite image, or lies outside every inset of a
// composite projection.
func (h *Handle) Project(lng, lat float64) (x, y float64, ok bool) {
	p, ok := h.p.point(lng, lat)
	if !ok {
		return 0, 0, false
	}
	return p[0], p[1], true
}

// Geometry returns a projected copy of g in canvas coordinates. Polygons
// that fall entirely outside a composite projection are dropped; unsupported
// geometry types yield nil.
func (h *Handle) Geometry(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		if p, ok := h.p.point(g[0], g[1]); ok {
			return p
		}
	case orb.LineString:
		return h.line(g)
	case orb.Polygon:
		if p, ok := h.p.polygon(g); ok {
			return p
		}
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(g))
		for _, poly := range g {
			if p, ok := h.p.polygon(poly); ok {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	case orb.Collection:
		out := make(orb.Collection, 0, len(g))
		for _, child := range g {
			if pg := h.Geometry(child); pg != nil {
				out = append(out, pg)
			}
		}
		return out
	}
	return nil
}

func (h *Handle) line(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, len(ls))
	for _, pt := range ls {
		if p, ok := h.p.point(pt[0], pt[1]); ok {
			out = append(out, p)
		}
	}
	return out
}

// ShapeOf returns SVG path data for a geographic geometry.
func (h *Handle) ShapeOf(g orb.Geometry) string {
	return PathData(h.Geometry(g))
}

// CentroidOf returns the area-weighted centroid of the projected geometry.
func (h *Handle) CentroidOf(g orb.Geometry) (x, y float64, ok bool) {
	return Centroid(h.Geometry(g))
}

// Bounds returns the projected bounding box of g.
func (h *Handle) Bounds(g orb.Geometry) orb.Bound {
	pg := h.Geometry(g)
	if pg == nil {
		return orb.Bound{}
	}
	return pg.Bound()
}

// =============================================================================
// Single projection
// =============================================================================

// transform applies rotation, the raw projection, scale and translation, in
// that order, and optionally clips to a canvas extent.
type transform struct {
	raw    rawFunc
	k      float64
	rotate float64 // radians
	dx, dy float64
	extent *orb.Bound
}

func newTransform(ps preset, k, tx, ty float64) *transform {
	t := &transform{raw: ps.raw, k: k, rotate: ps.rotate * radians}
	cx, cy := ps.raw(ps.center[0]*radians, ps.center[1]*radians)
	t.dx = tx - cx*k
	t.dy = ty + cy*k
	return t
}

func (t *transform) project(lng, lat float64) (orb.Point, bool) {
	lambda := lng*radians + t.rotate
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	} else if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}
	x, y := t.raw(lambda, lat*radians)
	p := orb.Point{x*t.k + t.dx, t.dy - y*t.k}
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
		return orb.Point{}, false
	}
	return p, true
}

func (t *transform) point(lng, lat float64) (orb.Point, bool) {
	p, ok := t.project(lng, lat)
	if !ok {
		return p, false
	}
	if t.extent != nil && !t.extent.Contains(p) {
		return orb.Point{}, false
	}
	return p, true
}

func (t *transform) polygon(poly orb.Polygon) (orb.Polygon, bool) {
	out := make(orb.Polygon, 0, len(poly))
	for _, ring := range poly {
		r := make(orb.Ring, 0, len(ring))
		for _, pt := range ring {
			if p, ok := t.project(pt[0], pt[1]); ok {
				r = append(r, p)
			}
		}
		if len(r) >= 3 {
			out = append(out, r)
		}
	}
	return out, len(out) > 0
}

// =============================================================================
// Composite Albers USA
// =============================================================================

// albersUSA routes each point to the first inset whose extent contains its
// image: lower 48, then Alaska, then Hawaii.
type albersUSA struct {
	insets []*transform
}

func newAlbersUSA(k, x, y float64) *albersUSA {
	lower48 := newTransform(presets["albers"], k, x, y)
	lower48.extent = &orb.Bound{
		Min: orb.Point{x - .455*k, y - .238*k},
		Max: orb.Point{x + .455*k, y + .238*k},
	}

	alaska := newTransform(preset{
		raw:    conicEqualArea(55*radians, 65*radians),
		rotate: 154,
		center: [2]float64{-2, 58.5},
	}, k*.35, x-.307*k, y+.201*k)
	alaska.extent = &orb.Bound{
		Min: orb.Point{x - .425*k + epsilon, y + .120*k + epsilon},
		Max: orb.Point{x - .214*k - epsilon, y + .234*k - epsilon},
	}

	hawaii := newTransform(preset{
		raw:    conicEqualArea(8*radians, 18*radians),
		rotate: 157,
		center: [2]float64{-3, 19.9},
	}, k, x-.205*k, y+.212*k)
	hawaii.extent = &orb.Bound{
		Min: orb.Point{x - .214*k + epsilon, y + .166*k + epsilon},
		Max: orb.Point{x - .115*k - epsilon, y + .234*k - epsilon},
	}

	return &albersUSA{insets: []*transform{lower48, alaska, hawaii}}
}

func (a *albersUSA) point(lng, lat float64) (orb.Point, bool) {
	for _, t := range a.insets {
		if p, ok := t.point(lng, lat); ok {
			return p, true
		}
	}
	return orb.Point{}, false
}

// polygon projects a whole polygon through the inset holding most of its
// outer ring, so shapes straddling an inset border are not torn apart.
func (a *albersUSA) polygon(poly orb.Polygon) (orb.Polygon, bool) {
	if len(poly) == 0 {
		return nil, false
	}
	best, bestCount := -1, 0
	for i, t := range a.insets {
		n := 0
		for _, pt := range poly[0] {
			if _, ok := t.point(pt[0], pt[1]); ok {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = i, n
		}
	}
	if best < 0 {
		return nil, false
	}
	return a.insets[best].polygon(poly)
}
