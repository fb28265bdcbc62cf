// Package cache stores fetched topologies, region data and rendered
// documents behind a small byte-oriented interface.
//
// Three backends are provided: [FileCache] for the CLI (one JSON file per
// entry under ~/.cache/mapsvg), [RedisCache] for the HTTP server and
// [NullCache] when caching is disabled. Keys are built by a [Keyer] so
// that every backend agrees on the layout:
//
//	keys := cache.NewDefaultKeyer()
//	c.Set(ctx, keys.TopologyKey(url), data, 24*time.Hour)
//
// Every backend reports hits, misses and writes through
// [observability.Cache], labelled by the key type (the text before the
// first colon).
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte store with per-entry expiry. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// keyType returns the namespace of key, used as the metrics label.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
