package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"html/template"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	geopkg "fleet_ops/internal/geo"
)

// Summary is the persistable route record derived from an optimized path.
type Summary struct {
	Start         geopkg.Point
	End           geopkg.Point
	TotalDistance float64
}

// Artifact bundles everything the surrounding application persists for a
// freshly planned route: the summary fields, a GeoJSON FeatureCollection
// (route line plus start/end markers) for any map renderer, a self-contained
// Leaflet HTML document, and the path as WKB for the geometry column.
// Building an artifact has no side effects; file writing stays with the
// caller.
type Artifact struct {
	Summary Summary
	GeoJSON []byte
	HTML    []byte
	WKB     []byte
}

var errEmptyPath = errors.New("optimized path is empty")

// Build renders the artifact for an optimized path. totalDistance is the raw
// walked total from the graph builder, carried through untouched.
func Build(route []geopkg.Point, totalDistance float64) (Artifact, error) {
	if len(route) == 0 {
		return Artifact{}, errEmptyPath
	}

	start := route[0]
	end := route[len(route)-1]

	coords := make([]geom.Coord, len(route))
	for i, p := range route {
		coords[i] = geom.Coord{p.Lng, p.Lat}
	}
	line := geom.NewLineString(geom.XY).MustSetCoords(coords)

	wkbBytes, err := wkb.Marshal(line, binary.LittleEndian)
	if err != nil {
		return Artifact{}, err
	}

	fc := gjson.FeatureCollection{Features: []*gjson.Feature{
		{Geometry: line, Properties: map[string]interface{}{"kind": "route", "distance_m": totalDistance}},
		{Geometry: geom.NewPointFlat(geom.XY, []float64{start.Lng, start.Lat}), Properties: map[string]interface{}{"kind": "start"}},
		{Geometry: geom.NewPointFlat(geom.XY, []float64{end.Lng, end.Lat}), Properties: map[string]interface{}{"kind": "end"}},
	}}
	geoJSON, err := json.Marshal(&fc)
	if err != nil {
		return Artifact{}, err
	}

	html, err := renderHTML(geoJSON, start)
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Summary: Summary{Start: start, End: end, TotalDistance: totalDistance},
		GeoJSON: geoJSON,
		HTML:    html,
		WKB:     wkbBytes,
	}, nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1.0"/>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLng}}], 14);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var data = {{.GeoJSON}};
L.geoJSON(data, {
  style: { color: 'blue', weight: 5, opacity: 0.8 },
  pointToLayer: function (feature, latlng) {
    var label = feature.properties.kind === 'start' ? 'Start' : 'End';
    return L.marker(latlng).bindPopup(label);
  }
}).addTo(map);
</script>
</body>
</html>
`))

func renderHTML(geoJSON []byte, center geopkg.Point) ([]byte, error) {
	var buf bytes.Buffer
	err := mapTemplate.Execute(&buf, struct {
		CenterLat float64
		CenterLng float64
		GeoJSON   template.JS
	}{
		CenterLat: center.Lat,
		CenterLng: center.Lng,
		GeoJSON:   template.JS(geoJSON),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
