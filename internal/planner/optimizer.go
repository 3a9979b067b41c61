package planner

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"fleet_ops/internal/geo"
)

// ErrNoPath is returned when the start and end of the track set are not
// connected in the induced graph, e.g. disjoint files uploaded together or a
// track whose points all collapse to one node.
var ErrNoPath = errors.New("no path between start and end of track")

// Optimize runs Dijkstra between the track set's first and last point and
// returns the ordered point sequence of the shortest path together with its
// cumulative weight in meters. The weight is informational; persisted route
// distance is Graph.TotalDistance.
func Optimize(g *Graph) ([]geo.Point, float64, error) {
	if g.wg.Edges().Len() == 0 {
		return nil, 0, ErrNoPath
	}

	sid, ok := g.ids[g.start]
	if !ok {
		return nil, 0, ErrNoPath
	}
	eid, ok := g.ids[g.end]
	if !ok {
		return nil, 0, ErrNoPath
	}

	shortest := path.DijkstraFrom(simple.Node(sid), g.wg)
	nodes, weight := shortest.To(eid)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, 0, ErrNoPath
	}

	route := make([]geo.Point, len(nodes))
	for i, n := range nodes {
		route[i] = g.points[n.ID()]
	}
	return route, weight, nil
}
