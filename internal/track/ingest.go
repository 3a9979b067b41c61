package track

import (
	"errors"
	"fmt"
	"io"

	"github.com/tkrajina/gpxgo/gpx"

	"fleet_ops/internal/geo"
)

// ErrParse indicates the uploaded file is not well-formed GPX.
var ErrParse = errors.New("malformed GPX track file")

// Points parses one GPX file and flattens every track and segment into a
// single ordered point sequence, preserving file-internal ordering.
func Points(name string, r io.Reader) ([]geo.Point, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}

	var points []geo.Point
	for _, t := range doc.Tracks {
		for _, seg := range t.Segments {
			for _, p := range seg.Points {
				points = append(points, geo.Point{Lat: p.Latitude, Lng: p.Longitude})
			}
		}
	}
	return points, nil
}
