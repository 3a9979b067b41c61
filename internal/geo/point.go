package geo

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is Earth's mean radius.
const EarthRadiusMeters = 6371000.0

// Point is an immutable WGS-84 coordinate pair in degrees.
// Two points are the same graph node exactly when their coordinates
// compare equal, so repeated identical GPS readings collapse together.
type Point struct {
	Lat float64
	Lng float64
}

// String renders the point as "lat,lng", the format persisted on routes.
func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lng)
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}
