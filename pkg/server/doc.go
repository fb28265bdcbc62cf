// Package server exposes live maps over HTTP.
//
// Each POST /maps draws a map from options JSON and keeps it in memory under
// a random id. Later requests mutate it (choropleth updates, bubble and arc
// layers, labels, legend, hover) and render it as SVG, JSON, PNG or PDF:
//
//	POST   /maps                      options JSON -> {"id": ...}
//	GET    /maps/{id}.svg             also .json, .png, .pdf; ?static=true
//	GET    /maps/{id}/regions
//	PATCH  /maps/{id}/choropleth      {"USA": "#FEE08B", "CAN": {"fillKey": "high"}}
//	PUT    /maps/{id}/bubbles         {"data": [...], "options": {...}}
//	PUT    /maps/{id}/arcs            {"data": [...], "options": {...}}
//	PUT    /maps/{id}/labels          label options
//	PUT    /maps/{id}/legend          legend options
//	POST   /maps/{id}/hover/{region}  {"x": 10, "y": 20}
//	DELETE /maps/{id}/hover/{region}
//	DELETE /maps/{id}
//	GET    /healthz
//	GET    /metrics
//
// A map is guarded by its own mutex. Rendered documents are cached per map
// version, so repeated reads of an unchanged map skip serialisation.
package server
