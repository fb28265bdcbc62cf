package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/mapsvg/pkg/errors"
)

// Environment variables read by [LoadServer].
const (
	EnvAddr          = "MAPSVG_ADDR"
	EnvRedisAddr     = "MAPSVG_REDIS_ADDR"
	EnvRedisPassword = "MAPSVG_REDIS_PASSWORD"
	EnvRateLimit     = "MAPSVG_RATE_LIMIT"
	EnvRateBurst     = "MAPSVG_RATE_BURST"
	EnvCacheTTL      = "MAPSVG_CACHE_TTL"
	EnvMaxMaps       = "MAPSVG_MAX_MAPS"
	EnvCachePrefix   = "MAPSVG_CACHE_PREFIX"
)

// Server holds the settings of the HTTP API.
type Server struct {
	Addr          string
	RedisAddr     string // empty uses the file cache
	RedisPassword string
	RateLimit     float64 // requests per second per client; 0 disables limiting
	RateBurst     int
	CacheTTL      time.Duration
	MaxMaps       int
	CachePrefix   string // scopes cache keys when servers share a backend
}

// DefaultServer returns the settings used when nothing is configured.
func DefaultServer() Server {
	return Server{
		Addr:      ":8080",
		RateLimit: 10,
		RateBurst: 20,
		CacheTTL:  10 * time.Minute,
		MaxMaps:   1000,
	}
}

// LoadServer reads server settings from the process environment, falling
// back to the given .env files (missing files are skipped) and then to
// [DefaultServer]. The process environment is not modified.
func LoadServer(envFiles ...string) (Server, error) {
	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	fileEnv := map[string]string{}
	if len(present) > 0 {
		var err error
		if fileEnv, err = godotenv.Read(present...); err != nil {
			return Server{}, errors.Wrap(errors.ErrCodeInvalidOptions, err, "read env files")
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	s := DefaultServer()
	if v, ok := lookup(EnvAddr); ok && v != "" {
		s.Addr = v
	}
	if v, ok := lookup(EnvRedisAddr); ok {
		s.RedisAddr = v
	}
	if v, ok := lookup(EnvRedisPassword); ok {
		s.RedisPassword = v
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Server{}, errors.New(errors.ErrCodeInvalidOptions, "%s: want a non-negative number, got %q", EnvRateLimit, v)
		}
		s.RateLimit = f
	}
	if v, ok := lookup(EnvRateBurst); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Server{}, errors.New(errors.ErrCodeInvalidOptions, "%s: want a positive integer, got %q", EnvRateBurst, v)
		}
		s.RateBurst = n
	}
	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Server{}, errors.New(errors.ErrCodeInvalidOptions, "%s: want a duration such as 10m, got %q", EnvCacheTTL, v)
		}
		s.CacheTTL = d
	}
	if v, ok := lookup(EnvMaxMaps); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Server{}, errors.New(errors.ErrCodeInvalidOptions, "%s: want a positive integer, got %q", EnvMaxMaps, v)
		}
		s.MaxMaps = n
	}
	if v, ok := lookup(EnvCachePrefix); ok {
		s.CachePrefix = v
	}
	return s, nil
}
