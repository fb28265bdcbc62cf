package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/mapsvg/pkg/cache"
	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
	"github.com/matzehuels/mapsvg/pkg/render/sink"
)

var contentTypes = map[string]string{
	"svg":  "image/svg+xml",
	"json": "application/json",
	"png":  "image/png",
	"pdf":  "application/pdf",
}

type createResponse struct {
	ID         string `json:"id"`
	Scope      string `json:"scope"`
	Projection string `json:"projection"`
	Regions    int    `json:"regions"`
}

type region struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Fill string `json:"fill"`
}

type pluginRequest struct {
	Data    json.RawMessage `json:"data"`
	Options map[string]any  `json:"options,omitempty"`
}

type hoverResponse struct {
	Region  string   `json:"region"`
	Popup   string   `json:"popup,omitempty"`
	Hovered []string `json:"hovered"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "maps": s.Len()})
}

func (s *Server) createMap(w http.ResponseWriter, r *http.Request) {
	var opts datamap.Options
	if err := decode(w, r, &opts, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger

	m, err := datamap.New(r.Context(), opts, datamap.WithSource(s.source))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := uuid.NewString()
	if err := s.add(m, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("created map", "id", id, "scope", m.Options().Scope, "regions", len(m.Regions()))

	w.Header().Set("Location", "/maps/"+id)
	writeJSON(w, http.StatusCreated, createResponse{
		ID:         id,
		Scope:      m.Options().Scope,
		Projection: m.Projection().Algorithm(),
		Regions:    len(m.Regions()),
	})
}

func (s *Server) deleteMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.remove(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeMapNotFound, "no map %q", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderMap serves /maps/{id}.{format}; no extension means svg.
func (s *Server) renderMap(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	ext := path.Ext(raw)
	id := strings.TrimSuffix(raw, ext)
	format := strings.TrimPrefix(ext, ".")
	if format == "" {
		format = "svg"
	}
	static := false
	if v := r.URL.Query().Get("static"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "static: want a boolean, got %q", v))
			return
		}
		static = b
	}

	sess, err := s.lookup(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	opts := sess.m.Options()
	key := s.keys.RenderKey(renderHash(id, sess.version, opts), cache.RenderKeyOpts{
		Format: format,
		Width:  opts.Width,
		Height: opts.Height,
		Static: static,
	})
	data, hit, err := s.cache.Get(r.Context(), key)
	if err != nil {
		s.logger.Warn("render cache read failed", "id", id, "error", err)
	}
	if !hit {
		if format == "svg" && static {
			data = sess.m.SVG(sink.WithStatic())
		} else if data, err = sess.m.Render(r.Context(), format, true); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.cache.Set(r.Context(), key, data, s.ttl); err != nil {
			s.logger.Warn("render cache write failed", "id", id, "error", err)
		}
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) listRegions(w http.ResponseWriter, r *http.Request) {
	s.withMap(w, r, false, func(m *datamap.Map) (any, error) {
		names := map[string]string{}
		for _, f := range m.Features() {
			names[f.ID] = f.Name
		}
		out := make([]region, 0, len(names))
		for _, id := range m.Regions() {
			fill, _ := m.Fill(id)
			out = append(out, region{ID: id, Name: names[id], Fill: fill})
		}
		return out, nil
	})
}

func (s *Server) updateChoropleth(w http.ResponseWriter, r *http.Request) {
	var update map[string]any
	if err := decode(w, r, &update, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withMap(w, r, true, func(m *datamap.Map) (any, error) {
		changed := m.UpdateChoropleth(update)
		if changed == nil {
			changed = []string{}
		}
		return map[string][]string{"changed": changed}, nil
	})
}

func (s *Server) plugin(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pluginRequest
		if err := decode(w, r, &req, true); err != nil {
			s.writeError(w, r, err)
			return
		}
		var data any
		if len(req.Data) > 0 {
			if err := json.Unmarshal(req.Data, &data); err != nil {
				s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "data"))
				return
			}
		}
		var opts any
		if len(req.Options) > 0 {
			opts = req.Options
		}
		s.withMap(w, r, true, func(m *datamap.Map) (any, error) {
			return m.Plugin(name, data, opts, datamap.PluginCall{})
		})
	}
}

func (s *Server) labels(w http.ResponseWriter, r *http.Request) {
	var opts layers.LabelOptions
	if err := decode(w, r, &opts, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withMap(w, r, true, func(m *datamap.Map) (any, error) {
		return nil, m.Labels(opts)
	})
}

func (s *Server) legend(w http.ResponseWriter, r *http.Request) {
	var opts layers.LegendOptions
	if err := decode(w, r, &opts, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withMap(w, r, true, func(m *datamap.Map) (any, error) {
		return nil, m.Legend(opts)
	})
}

func (s *Server) hover(w http.ResponseWriter, r *http.Request) {
	var pointer interact.Point
	if r.ContentLength != 0 {
		if err := decode(w, r, &pointer, true); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	id := chi.URLParam(r, "region")
	s.withMap(w, r, true, func(m *datamap.Map) (any, error) {
		if err := m.Hover(id, pointer); err != nil {
			return nil, err
		}
		popup, err := m.Popup(id)
		if err != nil {
			return nil, err
		}
		return hoverResponse{Region: id, Popup: popup, Hovered: m.Hovered()}, nil
	})
}

func (s *Server) unhover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "region")
	s.withMap(w, r, true, func(m *datamap.Map) (any, error) {
		return nil, m.Unhover(id)
	})
}

// withMap runs fn on the map named in the URL while holding its lock. A
// mutating call bumps the map version. A nil result answers 204.
func (s *Server) withMap(w http.ResponseWriter, r *http.Request, mutates bool, fn func(*datamap.Map) (any, error)) {
	sess, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess.mu.Lock()
	out, err := fn(sess.m)
	if err == nil && mutates {
		sess.version++
	}
	sess.mu.Unlock()

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// renderHash identifies one state of a live map: its options and the
// number of mutations applied since it was created.
func renderHash(id string, version int, opts datamap.Options) string {
	h, err := cache.HashJSON(struct {
		ID      string          `json:"id"`
		Version int             `json:"version"`
		Options datamap.Options `json:"options"`
	}{id, version, opts})
	if err != nil {
		return fmt.Sprintf("%s@%d", id, version)
	}
	return h
}
