package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "topology:x"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "topology:x", []byte("{}"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "topology:x")
	if err != nil || !hit || string(data) != "{}" {
		t.Errorf("Get = %q, %v, %v; want {}, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "topology:x"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "topology:x"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "data:old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "data:old"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Set(ctx, "data:forever", []byte("y"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "data:forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry Get = %v, %v; want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	defer c.Close()

	if _, hit, err := c.Get(ctx, "render:1"); hit || err != nil {
		t.Errorf("empty Get = %v, %v; want miss", hit, err)
	}
	if err := c.Set(ctx, "render:1", []byte("<svg/>"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if !mr.Exists("test:render:1") {
		t.Error("key should be stored with prefix")
	}
	data, hit, err := c.Get(ctx, "render:1")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "render:1"); hit {
		t.Error("entry should expire after ttl")
	}

	_ = c.Set(ctx, "render:2", []byte("x"), 0)
	if err := c.Delete(ctx, "render:2"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if mr.Exists("test:render:2") {
		t.Error("Delete should remove key")
	}
}

func TestRedisCacheClosed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
	if _, _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close error = %v, want ErrClosed", err)
	}
}

func TestOpenRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	c, err := OpenRedis(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("OpenRedis error: %v", err)
	}
	defer c.Close()
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping error: %v", err)
	}
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if _, err := Fetch(ctx, c, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Fetch(missing) error = %v, want ErrCacheMiss", err)
	}
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if data, err := Fetch(ctx, c, "k"); err != nil || string(data) != "v" {
		t.Errorf("Fetch = %q, %v", data, err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	a, _ := HashJSON(map[string]any{"b": 1, "a": 2})
	b, _ := HashJSON(map[string]any{"a": 2, "b": 1})
	if a != b {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("topology", "https://x/usa.json"); got != "http:topology:https://x/usa.json" {
		t.Errorf("HTTPKey = %s", got)
	}

	if !strings.HasPrefix(k.TopologyKey("usa.json"), "topology:") {
		t.Error("TopologyKey should start with topology:")
	}
	if k.DataKey("d", "json") == k.DataKey("d", "csv") {
		t.Error("DataKey should depend on data type")
	}

	r1 := k.RenderKey("h", RenderKeyOpts{Format: "svg"})
	r2 := k.RenderKey("h", RenderKeyOpts{Format: "png"})
	if r1 == r2 {
		t.Error("Different RenderKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:1:")

	if got := scoped.HTTPKey("data", "x"); got != "tenant:1:http:data:x" {
		t.Errorf("ScopedKeyer HTTPKey = %s", got)
	}
	for _, key := range []string{
		scoped.TopologyKey("usa"),
		scoped.DataKey("d", "csv"),
		scoped.RenderKey("h", RenderKeyOpts{}),
	} {
		if !strings.HasPrefix(key, "tenant:1:") {
			t.Errorf("key %s should be prefixed", key)
		}
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.HTTPKey("test", "key")
	if key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct{ key, want string }{
		{"topology:abc", "topology"},
		{"http:data:x", "http"},
		{"plain", "other"},
		{":x", "other"},
	}
	for _, tt := range tests {
		if got := keyType(tt.key); got != tt.want {
			t.Errorf("keyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
