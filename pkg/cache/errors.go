package cache

import (
	"context"
	"errors"
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by Fetch when the key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrClosed is returned when a closed cache is used.
	ErrClosed = errors.New("cache closed")
)

// Fetch returns the cached value for key, or ErrCacheMiss.
func Fetch(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}
