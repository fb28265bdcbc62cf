// Package topology decodes TopoJSON into region features.
//
// A topology stores polygon boundaries once, as shared arcs, and lets every
// geometry reference them by index (a negative index ~i walks arc i in
// reverse). Arcs may be quantised, in which case positions are
// delta-encoded integers mapped back through the topology transform.
//
// [Decode] parses and validates a document, [Load] turns one named object
// into [Feature] values ready for projection, and [World] returns the
// embedded world-countries topology.
package topology

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strconv"
	"sync"

	"github.com/biter777/countries"
	"github.com/paulmach/orb"

	"github.com/matzehuels/mapsvg/pkg/errors"
)

// WorldObject is the object name of the embedded world topology.
const WorldObject = "world"

//go:embed data/world.topo.json
var worldData []byte

// Topology is a decoded TopoJSON document with its arcs already resolved
// into absolute coordinates.
type Topology struct {
	Objects map[string]*Object
	arcs    []orb.LineString
}

// Object is a TopoJSON geometry object.
type Object struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []*Object       `json:"geometries,omitempty"`
}

type transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type document struct {
	Type      string             `json:"type"`
	Transform *transform         `json:"transform,omitempty"`
	Objects   map[string]*Object `json:"objects"`
	Arcs      [][][]float64      `json:"arcs"`
}

// Decode parses a TopoJSON document. Quantised arcs are delta-decoded and
// transformed; raw arcs are used as-is.
func Decode(data []byte) (*Topology, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTopology, err, "decode topology")
	}
	if doc.Type != "Topology" {
		return nil, errors.New(errors.ErrCodeInvalidTopology, "expected type Topology, got %q", doc.Type)
	}
	if len(doc.Objects) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTopology, "topology has no objects")
	}

	t := &Topology{Objects: doc.Objects, arcs: make([]orb.LineString, len(doc.Arcs))}
	for i, arc := range doc.Arcs {
		t.arcs[i] = decodeArc(arc, doc.Transform)
	}
	return t, nil
}

func decodeArc(arc [][]float64, tr *transform) orb.LineString {
	ls := make(orb.LineString, 0, len(arc))
	var x, y float64
	for _, p := range arc {
		if len(p) < 2 {
			continue
		}
		if tr == nil {
			ls = append(ls, orb.Point{p[0], p[1]})
			continue
		}
		x += p[0]
		y += p[1]
		ls = append(ls, orb.Point{x*tr.Scale[0] + tr.Translate[0], y*tr.Scale[1] + tr.Translate[1]})
	}
	return ls
}

// ObjectNames returns the names of the top-level objects, sorted.
func (t *Topology) ObjectNames() []string {
	names := make([]string, 0, len(t.Objects))
	for name := range t.Objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the topology holds an object called scope.
func (t *Topology) Has(scope string) bool {
	_, ok := t.Objects[scope]
	return ok
}

var (
	worldOnce sync.Once
	worldTopo *Topology
	worldErr  error
)

// World returns the embedded world topology. It is decoded once and shared;
// callers must not mutate it.
func World() (*Topology, error) {
	worldOnce.Do(func() {
		worldTopo, worldErr = Decode(worldData)
	})
	return worldTopo, worldErr
}

// idString normalises a TopoJSON id, which may be a string or a number.
func idString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

// displayName picks properties.name, then the ISO country name for the id,
// then the id itself.
func displayName(id string, props map[string]any) string {
	if name, ok := props["name"].(string); ok && name != "" {
		return name
	}
	if id != "" {
		if c := countries.ByName(id); c != countries.Unknown {
			return c.String()
		}
	}
	return id
}
