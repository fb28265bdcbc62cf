package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000}

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	DrawsTotal       *prometheus.CounterVec
	DrawDurationMs   *prometheus.HistogramVec
	DrawFeatures     prometheus.Histogram
	LayerCallsTotal  *prometheus.CounterVec
	LayerEntered     *prometheus.CounterVec
	LayerExited      *prometheus.CounterVec
	LayerDurationMs  *prometheus.HistogramVec
	RegionsRecolored prometheus.Counter

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheSetBytes    *prometheus.CounterVec

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPResponseTotal *prometheus.CounterVec
	HTTPErrorsTotal   *prometheus.CounterVec
	HTTPDurationMs    *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		DrawsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_draws_total",
			Help: "Total number of region layer draws by scope and outcome",
		}, []string{"scope", "status"}),
		DrawDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mapsvg_draw_duration_ms",
			Help:    "Region layer draw duration in milliseconds",
			Buckets: durationBuckets,
		}, []string{"scope"}),
		DrawFeatures: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mapsvg_draw_features",
			Help:    "Number of region paths per draw",
			Buckets: []float64{1, 10, 50, 100, 200, 500},
		}),
		LayerCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_layer_calls_total",
			Help: "Total plugin layer calls by layer and outcome",
		}, []string{"layer", "status"}),
		LayerEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_layer_entered_total",
			Help: "Elements added by plugin layers",
		}, []string{"layer"}),
		LayerExited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_layer_exited_total",
			Help: "Elements removed by plugin layers",
		}, []string{"layer"}),
		LayerDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mapsvg_layer_duration_ms",
			Help:    "Plugin layer call duration in milliseconds",
			Buckets: durationBuckets,
		}, []string{"layer"}),
		RegionsRecolored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mapsvg_regions_recolored_total",
			Help: "Regions whose fill changed through choropleth updates",
		}),
		CacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_cache_hits_total",
			Help: "Total cache hits by key type",
		}, []string{"type"}),
		CacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_cache_misses_total",
			Help: "Total cache misses by key type",
		}, []string{"type"}),
		CacheSetBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_cache_set_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"type"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_http_requests_total",
			Help: "Outgoing HTTP requests by host",
		}, []string{"method", "host"}),
		HTTPResponseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_http_responses_total",
			Help: "HTTP responses by host and status code",
		}, []string{"method", "host", "code"}),
		HTTPErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsvg_http_errors_total",
			Help: "HTTP transport failures by host",
		}, []string{"method", "host"}),
		HTTPDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mapsvg_http_duration_ms",
			Help:    "Outgoing HTTP request duration in milliseconds",
			Buckets: durationBuckets,
		}, []string{"host"}),
	}
	if reg != nil {
		reg.MustRegister(p.collectors()...)
	}
	return p
}

func (p *Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.DrawsTotal, p.DrawDurationMs, p.DrawFeatures,
		p.LayerCallsTotal, p.LayerEntered, p.LayerExited, p.LayerDurationMs,
		p.RegionsRecolored,
		p.CacheHitsTotal, p.CacheMissesTotal, p.CacheSetBytes,
		p.HTTPRequestsTotal, p.HTTPResponseTotal, p.HTTPErrorsTotal, p.HTTPDurationMs,
	}
}

// Install registers p as the global draw, cache and HTTP hooks.
func (p *Prometheus) Install() {
	SetDrawHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func (p *Prometheus) OnDrawStart(context.Context, string, string) {}

func (p *Prometheus) OnDrawComplete(_ context.Context, scope string, features int, d time.Duration, err error) {
	p.DrawsTotal.WithLabelValues(scope, status(err)).Inc()
	p.DrawDurationMs.WithLabelValues(scope).Observe(ms(d))
	if err == nil {
		p.DrawFeatures.Observe(float64(features))
	}
}

func (p *Prometheus) OnLayer(_ context.Context, layer string, entered, exited int, d time.Duration, err error) {
	p.LayerCallsTotal.WithLabelValues(layer, status(err)).Inc()
	p.LayerEntered.WithLabelValues(layer).Add(float64(entered))
	p.LayerExited.WithLabelValues(layer).Add(float64(exited))
	p.LayerDurationMs.WithLabelValues(layer).Observe(ms(d))
}

func (p *Prometheus) OnChoropleth(_ context.Context, regions int) {
	p.RegionsRecolored.Add(float64(regions))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(_ context.Context, method, host, _ string) {
	p.HTTPRequestsTotal.WithLabelValues(method, host).Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	p.HTTPResponseTotal.WithLabelValues(method, host, strconv.Itoa(code)).Inc()
	p.HTTPDurationMs.WithLabelValues(host).Observe(ms(d))
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.HTTPErrorsTotal.WithLabelValues(method, host).Inc()
}

var (
	_ DrawHooks  = (*Prometheus)(nil)
	_ CacheHooks = (*Prometheus)(nil)
	_ HTTPHooks  = (*Prometheus)(nil)
)
