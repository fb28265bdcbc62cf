package topology

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/mapsvg/pkg/errors"
)

// Feature is one region of a loaded topology. Geometry is an orb.Polygon or
// orb.MultiPolygon in longitude/latitude.
type Feature struct {
	ID         string
	Name       string
	Geometry   orb.Geometry
	Properties map[string]any
}

// Load converts the object named scope into features, in document order.
// Features whose id is in exclude are dropped. Only Polygon and
// MultiPolygon geometries are kept; GeometryCollections are flattened.
func Load(t *Topology, scope string, exclude map[string]bool) ([]Feature, error) {
	obj, ok := t.Objects[scope]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "topology has no object %q (have %v)", scope, t.ObjectNames())
	}

	var features []Feature
	var walk func(o *Object) error
	walk = func(o *Object) error {
		switch o.Type {
		case "GeometryCollection":
			for _, child := range o.Geometries {
				if err := walk(child); err != nil {
					return err
				}
			}
			return nil
		case "Polygon", "MultiPolygon":
		default:
			return nil
		}

		id := idString(o.ID)
		if exclude[id] {
			return nil
		}
		g, err := t.geometry(o)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTopology, err, "object %q feature %q", scope, id)
		}
		features = append(features, Feature{
			ID:         id,
			Name:       displayName(id, o.Properties),
			Geometry:   g,
			Properties: o.Properties,
		})
		return nil
	}
	if err := walk(obj); err != nil {
		return nil, err
	}
	return features, nil
}

func (t *Topology) geometry(o *Object) (orb.Geometry, error) {
	switch o.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(o.Arcs, &rings); err != nil {
			return nil, err
		}
		return t.polygon(rings)
	default:
		var polys [][][]int
		if err := json.Unmarshal(o.Arcs, &polys); err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			p, err := t.polygon(rings)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	}
}

func (t *Topology) polygon(rings [][]int) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, arcs := range rings {
		r, err := t.ring(arcs)
		if err != nil {
			return nil, err
		}
		poly = append(poly, r)
	}
	return poly, nil
}

// ring stitches arcs together. Consecutive arcs share their joint point, so
// the last point collected so far is dropped before each arc is appended.
func (t *Topology) ring(indices []int) (orb.Ring, error) {
	var r orb.Ring
	for _, i := range indices {
		arc, err := t.arc(i)
		if err != nil {
			return nil, err
		}
		if len(r) > 0 {
			r = r[:len(r)-1]
		}
		r = append(r, arc...)
	}
	if n := len(r); n > 0 && r[0] != r[n-1] {
		r = append(r, r[0])
	}
	return r, nil
}

// arc returns arc i, reversed when i is negative (~i addresses arc i).
func (t *Topology) arc(i int) (orb.LineString, error) {
	idx := i
	if i < 0 {
		idx = ^i
	}
	if idx >= len(t.arcs) {
		return nil, errors.New(errors.ErrCodeInvalidTopology, "arc index %d out of range (%d arcs)", i, len(t.arcs))
	}
	src := t.arcs[idx]
	if i >= 0 {
		return src, nil
	}
	rev := make(orb.LineString, len(src))
	for j, p := range src {
		rev[len(src)-1-j] = p
	}
	return rev, nil
}

// ToGeoJSON exports features as a GeoJSON FeatureCollection with the region
// id as feature id and the display name as the "name" property.
func ToGeoJSON(features []Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		for k, v := range f.Properties {
			gf.Properties[k] = v
		}
		gf.Properties["name"] = f.Name
		fc.Append(gf)
	}
	return fc
}
