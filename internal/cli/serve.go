package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapsvg/pkg/cache"
	"github.com/matzehuels/mapsvg/pkg/config"
	"github.com/matzehuels/mapsvg/pkg/observability"
	"github.com/matzehuels/mapsvg/pkg/server"
	"github.com/matzehuels/mapsvg/pkg/source"
)

type serveOpts struct {
	envFile string
	addr    string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the map HTTP API",
		Long: `Serve live maps over HTTP. Settings come from MAPSVG_* environment
variables, falling back to the --env file:

  MAPSVG_ADDR            listen address (default :8080)
  MAPSVG_REDIS_ADDR      cache renders and fetches in Redis instead of on disk
  MAPSVG_REDIS_PASSWORD
  MAPSVG_RATE_LIMIT      requests per second per client (default 10, 0 disables)
  MAPSVG_RATE_BURST      (default 20)
  MAPSVG_CACHE_TTL       render cache lifetime (default 10m)
  MAPSVG_MAX_MAPS        live map limit (default 1000)
  MAPSVG_CACHE_PREFIX    prefix of every cache key, for servers sharing Redis

Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env", ".env", "env file with MAPSVG_* settings")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides MAPSVG_ADDR)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render and fetch cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.LoadServer(opts.envFile)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}

	store, err := c.serverCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observability.NewPrometheus(reg).Install()

	keys := serverKeyer(cfg.CachePrefix)
	src := source.NewClient(
		source.WithCache(store, defaultFetchTTL),
		source.WithKeyer(keys),
		source.WithURLOnly(),
		source.WithLogger(logger),
	)
	srv := server.New(
		server.WithLogger(logger),
		server.WithCache(store, cfg.CacheTTL),
		server.WithKeyer(keys),
		server.WithSource(src),
		server.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		server.WithMaxMaps(cfg.MaxMaps),
		server.WithMetrics(observability.Handler(reg)),
	)

	printInfo("Serving map API")
	printKeyValue("Address", cfg.Addr)
	printKeyValue("Max maps", fmt.Sprint(cfg.MaxMaps))
	printKeyValue("Cache TTL", cfg.CacheTTL.String())
	if cfg.CachePrefix != "" {
		printKeyValue("Cache prefix", cfg.CachePrefix)
	}
	if cfg.RateLimit > 0 {
		printKeyValue("Rate limit", fmt.Sprintf("%g/s, burst %d", cfg.RateLimit, cfg.RateBurst))
	} else {
		printWarning("Rate limiting disabled")
	}
	return srv.Run(ctx, cfg.Addr)
}

// serverCache picks Redis when configured, else the file cache.
func (c *CLI) serverCache(ctx context.Context, cfg config.Server, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisAddr != "" {
		rc, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			return nil, err
		}
		printDetail("cache: redis %s", cfg.RedisAddr)
		return rc, nil
	}
	return newCache(false)
}

// serverKeyer scopes cache keys with prefix, if any.
func serverKeyer(prefix string) cache.Keyer {
	if prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), prefix)
}
