package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
)

func TestLoadRegions(t *testing.T) {
	hidden, err := loadRegions(testContext(), nil, &regionsOpts{scope: "world"})
	if err != nil {
		t.Fatalf("loadRegions() error: %v", err)
	}
	shown, err := loadRegions(testContext(), nil, &regionsOpts{scope: "world", showAntarctica: true})
	if err != nil {
		t.Fatalf("loadRegions(showAntarctica) error: %v", err)
	}
	if len(shown) != len(hidden)+1 {
		t.Errorf("len with Antarctica = %d, want %d", len(shown), len(hidden)+1)
	}
	for _, f := range hidden {
		if f.ID == "ATA" {
			t.Error("ATA listed without --show-antarctica")
		}
	}

	if _, err := loadRegions(testContext(), nil, &regionsOpts{scope: "counties"}); err == nil {
		t.Error("loadRegions(counties) error = nil, want unknown object")
	}
}

func TestRegionsTable(t *testing.T) {
	features, err := loadRegions(testContext(), nil, &regionsOpts{scope: "world"})
	if err != nil {
		t.Fatal(err)
	}
	out := regionsTable(features)
	for _, want := range []string{"ID", "Lat, Lng", "USA", "FRA"} {
		if !strings.Contains(out, want) {
			t.Errorf("regionsTable() missing %q", want)
		}
	}
}

func TestRunRegionsGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.geojson")
	c := New(os.Stderr, LogInfo)
	opts := &regionsOpts{scope: "world", geojson: true, output: path, noCache: true}
	if err := c.runRegions(testContext(), opts); err != nil {
		t.Fatalf("runRegions() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("UnmarshalFeatureCollection() error: %v", err)
	}
	features, _ := loadRegions(testContext(), nil, &regionsOpts{scope: "world"})
	if len(fc.Features) != len(features) {
		t.Errorf("len(Features) = %d, want %d", len(fc.Features), len(features))
	}
}
