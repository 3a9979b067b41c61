package artifact

import (
	"encoding/json"
	"strings"
	"testing"

	"fleet_ops/internal/geo"
)

var route = []geo.Point{
	{Lat: -1.2864, Lng: 36.8172},
	{Lat: -1.2850, Lng: 36.8160},
	{Lat: -1.2840, Lng: 36.8150},
}

func TestBuildSummary(t *testing.T) {
	a, err := Build(route, 1234.5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a.Summary.Start != route[0] || a.Summary.End != route[2] {
		t.Fatalf("summary endpoints wrong: %+v", a.Summary)
	}
	if a.Summary.TotalDistance != 1234.5 {
		t.Fatalf("total distance %v, want 1234.5", a.Summary.TotalDistance)
	}
	if len(a.WKB) == 0 {
		t.Fatal("expected WKB geometry")
	}
}

func TestBuildGeoJSONFeatures(t *testing.T) {
	a, err := Build(route, 100)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(a.GeoJSON, &fc); err != nil {
		t.Fatalf("unmarshal geojson: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 3 {
		t.Fatalf("want FeatureCollection with 3 features, got %s/%d", fc.Type, len(fc.Features))
	}
	if fc.Features[0].Geometry.Type != "LineString" {
		t.Fatalf("first feature should be the route line, got %s", fc.Features[0].Geometry.Type)
	}
	kinds := map[string]bool{}
	for _, f := range fc.Features {
		if k, ok := f.Properties["kind"].(string); ok {
			kinds[k] = true
		}
	}
	if !kinds["start"] || !kinds["end"] {
		t.Fatalf("missing endpoint markers, kinds: %v", kinds)
	}
}

func TestBuildHTMLDocument(t *testing.T) {
	a, err := Build(route, 100)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	html := string(a.HTML)
	for _, want := range []string{"leaflet", "L.geoJSON", "LineString"} {
		if !strings.Contains(html, want) {
			t.Fatalf("HTML missing %q", want)
		}
	}
}

func TestBuildEmptyPath(t *testing.T) {
	if _, err := Build(nil, 0); err == nil {
		t.Fatal("want error for empty path")
	}
}
