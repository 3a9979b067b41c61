package planner

import (
	"errors"

	"gonum.org/v1/gonum/graph/simple"

	"fleet_ops/internal/geo"
)

// ErrInsufficientPoints is returned when the combined track set has fewer
// than two points, leaving nothing to build edges from.
var ErrInsufficientPoints = errors.New("track has fewer than 2 points")

// Graph is a weighted undirected graph induced by the consecutive points of
// an ingested track set. Nodes are keyed by exact coordinate value: repeated
// identical readings (a paused GPS device) collapse to a single node, and
// re-adding an edge between the same endpoints overwrites its weight.
type Graph struct {
	ids    map[geo.Point]int64
	points []geo.Point
	wg     *simple.WeightedUndirectedGraph

	// TotalDistance is the running sum of consecutive-pair distances over
	// the raw track, not the length of any later shortest path. Routes
	// persist this value as their distance.
	TotalDistance float64

	start geo.Point
	end   geo.Point
}

// Build constructs the route graph from one point sequence per uploaded
// file, in submission order. Consecutive pairs within a file contribute
// their geodesic distance to TotalDistance and, unless both ends collapse
// to the same node, one weighted edge. No edge bridges the last point of
// one file to the first point of the next; separate files only connect
// through coordinates they share.
func Build(segments ...[]geo.Point) (*Graph, error) {
	total := 0
	for _, seg := range segments {
		total += len(seg)
	}
	if total < 2 {
		return nil, ErrInsufficientPoints
	}

	g := &Graph{
		ids: make(map[geo.Point]int64),
		wg:  simple.NewWeightedUndirectedGraph(0, 0),
	}

	first := true
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if first {
			g.start = seg[0]
			first = false
		}
		g.end = seg[len(seg)-1]

		g.node(seg[0])
		for i := 0; i < len(seg)-1; i++ {
			a := g.node(seg[i])
			b := g.node(seg[i+1])
			d := geo.Distance(seg[i], seg[i+1])
			g.TotalDistance += d
			if a != b {
				g.wg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(a), T: simple.Node(b), W: d})
			}
		}
	}
	return g, nil
}

// node returns the id for a point, adding a fresh node on first sight.
func (g *Graph) node(p geo.Point) int64 {
	if id, ok := g.ids[p]; ok {
		return id
	}
	id := int64(len(g.points))
	g.ids[p] = id
	g.points = append(g.points, p)
	g.wg.AddNode(simple.Node(id))
	return id
}

// Start and End return the first and last point of the source track set.
func (g *Graph) Start() geo.Point { return g.start }
func (g *Graph) End() geo.Point   { return g.end }

// NodeCount reports the number of distinct coordinate nodes.
func (g *Graph) NodeCount() int { return len(g.points) }
