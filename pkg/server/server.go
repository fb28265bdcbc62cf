package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mapsvg/pkg/cache"
	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/source"
)

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 10 * time.Second
)

// Server holds live maps and serves the HTTP API.
type Server struct {
	logger  *log.Logger
	cache   cache.Cache
	keys    cache.Keyer
	ttl     time.Duration
	source  *source.Client
	metrics http.Handler
	rps     float64
	burst   int
	maxMaps int

	mu   sync.RWMutex
	maps map[string]*session
}

// session is one live map. version counts mutations and keys the render
// cache.
type session struct {
	mu      sync.Mutex
	m       *datamap.Map
	version int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache stores rendered documents in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
		s.ttl = ttl
	}
}

// WithSource sets the client maps fetch topologies and data with. It
// should refuse local paths; see source.WithURLOnly.
func WithSource(c *source.Client) Option {
	return func(s *Server) {
		if c != nil {
			s.source = c
		}
	}
}

// WithRateLimit limits each client to rps requests per second with the
// given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) { s.rps, s.burst = rps, burst }
}

// WithMaxMaps caps the number of live maps.
func WithMaxMaps(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxMaps = n
		}
	}
}

// WithKeyer sets the cache key layout, e.g. a [cache.ScopedKeyer] when
// several servers share one cache.
func WithKeyer(k cache.Keyer) Option {
	return func(s *Server) {
		if k != nil {
			s.keys = k
		}
	}
}

// WithMetrics serves h on /metrics.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// New returns a Server with no live maps.
func New(opts ...Option) *Server {
	s := &Server{
		logger:  log.Default(),
		cache:   cache.NewNullCache(),
		keys:    cache.NewDefaultKeyer(),
		maxMaps: 1000,
		maps:    map[string]*session{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = source.NewClient(source.WithURLOnly(), source.WithLogger(s.logger))
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	if s.rps > 0 {
		r.Use(newRateLimiter(s.rps, s.burst).middleware(s.writeError, "/healthz", "/metrics"))
	}

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/maps", func(r chi.Router) {
		r.Post("/", s.createMap)
		r.Get("/{id}", s.renderMap)
		r.Delete("/{id}", s.deleteMap)
		r.Get("/{id}/regions", s.listRegions)
		r.Patch("/{id}/choropleth", s.updateChoropleth)
		r.Put("/{id}/bubbles", s.plugin("bubbles"))
		r.Put("/{id}/arcs", s.plugin("arc"))
		r.Put("/{id}/labels", s.labels)
		r.Put("/{id}/legend", s.legend)
		r.Post("/{id}/hover/{region}", s.hover)
		r.Delete("/{id}/hover/{region}", s.unhover)
	})
	return r
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Len returns the number of live maps.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.maps)
}

func (s *Server) add(m *datamap.Map, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.maps) >= s.maxMaps {
		return errors.New(errors.ErrCodeRateLimited, "map limit reached (%d live maps)", s.maxMaps)
	}
	s.maps[id] = &session{m: m}
	return nil
}

func (s *Server) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.maps[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "no map %q", id)
	}
	return sess, nil
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.maps[id]; !ok {
		return false
	}
	delete(s.maps, id)
	return true
}
