package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapsvg/pkg/buildinfo"
	"github.com/matzehuels/mapsvg/pkg/cache"
	mserrors "github.com/matzehuels/mapsvg/pkg/errors"
)

const square = `{
  "type": "Topology",
  "objects": {
    "shapes": {
      "type": "GeometryCollection",
      "geometries": [{"type": "Polygon", "id": "SQ", "arcs": [[0]]}]
    }
  },
  "arcs": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]
}`

func quietClient(opts ...Option) *Client {
	base := []Option{
		WithLogger(log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})),
		WithRetry(3, time.Millisecond),
	}
	return NewClient(append(base, opts...)...)
}

func TestFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"USA":{"fillKey":"high"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := quietClient().Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != `{"USA":{"fillKey":"high"}}` {
		t.Errorf("Fetch() = %s", data)
	}

	_, err = quietClient().Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if !mserrors.Is(err, mserrors.ErrCodeFileNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	_, err = quietClient(WithURLOnly()).Fetch(context.Background(), path)
	if !mserrors.Is(err, mserrors.ErrCodeInvalidInput) {
		t.Errorf("Fetch(path) with WithURLOnly error = %v, want INVALID_INPUT", err)
	}
}

func TestFetchURLCached(t *testing.T) {
	var hits atomic.Int32
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		agent.Store(r.UserAgent())
		w.Write([]byte(square))
	}))
	defer srv.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	c := quietClient(WithCache(fc, time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(ctx, srv.URL+"/usa.json"); err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
	if ua, _ := agent.Load().(string); ua != buildinfo.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", ua, buildinfo.UserAgent())
	}

	refresh := quietClient(WithCache(fc, time.Hour), WithRefresh(true))
	if _, err := refresh.Fetch(ctx, srv.URL+"/usa.json"); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits after refresh = %d, want 2", n)
	}
}

func TestFetchRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := quietClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "ok" || hits.Load() != 3 {
		t.Errorf("Fetch() = %q after %d hits, want ok after 3", data, hits.Load())
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	tests := []struct {
		path string
		code mserrors.Code
	}{
		{"/missing", mserrors.ErrCodeNotFound},
		{"/forbidden", mserrors.ErrCodeNetwork},
		{"/broken", mserrors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		_, err := quietClient().Fetch(context.Background(), srv.URL+tt.path)
		if got := mserrors.GetCode(err); got != tt.code {
			t.Errorf("Fetch(%s) code = %s, want %s (err %v)", tt.path, got, tt.code, err)
		}
	}

	if _, err := quietClient().Fetch(context.Background(), ""); !mserrors.Is(err, mserrors.ErrCodeInvalidInput) {
		t.Errorf("Fetch(\"\") error = %v, want INVALID_INPUT", err)
	}
}

func TestParseRegionData(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		dataType string
		wantKeys []string
		wantErr  mserrors.Code
	}{
		{"object", `{"USA":{"fillKey":"a"},"CAN":"#fff"}`, "json", []string{"USA", "CAN"}, ""},
		{"array", `[{"id":"USA","fillKey":"a"},{"id":840,"fillKey":"b"}]`, "", []string{"USA", "840"}, ""},
		{"csv", "id,fillKey\nTX,high\nCA, low\n", "csv", []string{"TX", "CA"}, ""},
		{"empty csv", "", "CSV", nil, ""},
		{"array without id", `[{"fillKey":"a"}]`, "json", nil, mserrors.ErrCodeInvalidFormat},
		{"csv without id", "name,fillKey\nTexas,high\n", "csv", nil, mserrors.ErrCodeInvalidFormat},
		{"scalar", `42`, "json", nil, mserrors.ErrCodeInvalidFormat},
		{"bad json", `{`, "json", nil, mserrors.ErrCodeInvalidFormat},
		{"unknown type", `{}`, "tsv", nil, mserrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegionData([]byte(tt.data), tt.dataType)
			if tt.wantErr != "" {
				if !mserrors.Is(err, tt.wantErr) {
					t.Errorf("ParseRegionData() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRegionData() error: %v", err)
			}
			if len(got) != len(tt.wantKeys) {
				t.Errorf("len = %d, want %d (%v)", len(got), len(tt.wantKeys), got)
			}
			for _, k := range tt.wantKeys {
				if _, ok := got[k]; !ok {
					t.Errorf("missing key %q in %v", k, got)
				}
			}
		})
	}
}

func TestParseCSVRow(t *testing.T) {
	got, err := ParseRegionData([]byte("id,fillKey,rate\nTX,high,4.5\n"), CSV)
	if err != nil {
		t.Fatalf("ParseRegionData() error: %v", err)
	}
	row, _ := got["TX"].(map[string]any)
	if row["fillKey"] != "high" || row["rate"] != "4.5" || row["id"] != "TX" {
		t.Errorf("row = %v", row)
	}
}

func TestLoad(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topo.json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(square)) })
	mux.HandleFunc("/data.csv", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("id,fillKey\nSQ,high\n")) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := quietClient().Load(context.Background(), Request{
		Topology: srv.URL + "/topo.json",
		Data:     srv.URL + "/data.csv",
		DataType: CSV,
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if res.Topology == nil || !res.Topology.Has("shapes") {
		t.Error("Load() topology missing object shapes")
	}
	if _, ok := res.Data["SQ"]; !ok {
		t.Errorf("Load() data = %v, want SQ", res.Data)
	}

	_, err = quietClient().Load(context.Background(), Request{
		Topology: srv.URL + "/topo.json",
		Data:     srv.URL + "/nope.csv",
		DataType: CSV,
	})
	if !mserrors.Is(err, mserrors.ErrCodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}

	empty, err := quietClient().Load(context.Background(), Request{})
	if err != nil || empty.Topology != nil || empty.Data != nil {
		t.Errorf("Load(empty) = %+v, %v", empty, err)
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://x/usa.json", true},
		{"http://x", true},
		{"usa.json", false},
		{"ftp://x", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := redact("https://user:pw@x.com/a?token=1"); got != "https://x.com/a" {
		t.Errorf("redact() = %s", got)
	}
}
