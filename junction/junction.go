// Package junction turns a filament network into a routable graph where
// tubes connect at their crossings, and finds the shortest guided path a
// motor could walk between two points.
package junction

import (
	"log/slog"
	"math"
	"sort"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/overlap"
)

// ErrUnreachable is returned when no filament path joins two points.
var ErrUnreachable = errors.New("no filament path")

// endTol is how close a crossing parameter must be to 0 or 1 to be merged
// into the segment's end vertex.
const endTol = 1e-9

// minWeight keeps coincident vertices joined by a strictly positive edge.
const minWeight = 1e-9

// Graph is a filament network contracted for shortest path queries.
type Graph struct {
	g         ch.Graph
	positions []geom.Point
	junctions int
	edges     map[[2]int64]bool
}

// Path is a route along filaments.
type Path struct {
	Length   float64
	Vertices []int64
	Points   []geom.Point
}

type stop struct {
	t  float64
	id int64
}

// Build links every tube as a chain of vertices and joins tubes wherever
// crossings place a shared vertex on two segments.
func Build(net *network.Network, crossings []overlap.Intersection) (*Graph, error) {
	spt := net.SegmentsPerTube()
	chainID := func(i network.SegmentIndex, end int) int64 {
		tube := int(net.TubeOf(i))
		local := int(i) - tube*spt
		return int64(tube*(spt+1) + local + end)
	}

	gr := &Graph{edges: make(map[[2]int64]bool)}
	for t := 0; t < net.NumTubes(); t++ {
		gr.positions = append(gr.positions, net.TubePoints(network.TubeIndex(t))...)
	}

	// stops along each segment besides its two ends
	stops := make(map[network.SegmentIndex][]stop)
	var links [][2]int64

	for _, x := range crossings {
		// symmetric probing lists each pair twice
		if x.Probe == network.NoSegment || x.Probe > x.Segment {
			continue
		}
		pEnd, pOK := endOf(x.T)
		sEnd, sOK := endOf(x.S)

		var id int64
		switch {
		case pOK && sOK:
			a, b := chainID(x.Probe, pEnd), chainID(x.Segment, sEnd)
			if a != b {
				links = append(links, [2]int64{a, b})
			}
			continue
		case pOK:
			id = chainID(x.Probe, pEnd)
		case sOK:
			id = chainID(x.Segment, sEnd)
		default:
			id = int64(len(gr.positions))
			gr.positions = append(gr.positions, x.Point)
			gr.junctions++
		}
		if !pOK {
			stops[x.Probe] = append(stops[x.Probe], stop{t: x.T, id: id})
		}
		if !sOK {
			stops[x.Segment] = append(stops[x.Segment], stop{t: x.S, id: id})
		}
	}

	for id := range gr.positions {
		if err := gr.g.CreateVertex(int64(id)); err != nil {
			return nil, errors.Wrapf(err, "can't create vertex %d", id)
		}
	}

	for i := 0; i < net.Len(); i++ {
		seg := network.SegmentIndex(i)
		route := append([]stop{{t: 0, id: chainID(seg, 0)}}, stops[seg]...)
		route = append(route, stop{t: 1, id: chainID(seg, 1)})
		sort.SliceStable(route, func(a, b int) bool { return route[a].t < route[b].t })
		for k := 1; k < len(route); k++ {
			if err := gr.link(route[k-1].id, route[k].id); err != nil {
				return nil, err
			}
		}
	}
	for _, l := range links {
		if err := gr.link(l[0], l[1]); err != nil {
			return nil, err
		}
	}

	gr.g.PrepareContractionHierarchies()
	slog.Debug("junction graph built",
		"vertices", len(gr.positions),
		"junctions", gr.junctions,
		"links", len(links),
	)
	return gr, nil
}

func endOf(t float64) (int, bool) {
	switch {
	case math.Abs(t) <= endTol:
		return 0, true
	case math.Abs(t-1) <= endTol:
		return 1, true
	}
	return 0, false
}

// link adds an undirected edge weighted by Euclidean length.
func (gr *Graph) link(a, b int64) error {
	if a > b {
		a, b = b, a
	}
	if a == b || gr.edges[[2]int64{a, b}] {
		return nil
	}
	gr.edges[[2]int64{a, b}] = true
	w := math.Max(geom.Distance(gr.positions[a], gr.positions[b]), minWeight)
	if err := gr.g.AddEdge(a, b, w); err != nil {
		return errors.Wrapf(err, "can't add edge %d->%d", a, b)
	}
	if err := gr.g.AddEdge(b, a, w); err != nil {
		return errors.Wrapf(err, "can't add edge %d->%d", b, a)
	}
	return nil
}

// Vertices returns the number of vertices.
func (gr *Graph) Vertices() int { return len(gr.positions) }

// Junctions returns the number of interior crossing vertices.
func (gr *Graph) Junctions() int { return gr.junctions }

// Position returns the location of vertex id.
func (gr *Graph) Position(id int64) geom.Point { return gr.positions[id] }

// Nearest returns the vertex closest to p.
func (gr *Graph) Nearest(p geom.Point) int64 {
	best, bestDist := int64(-1), math.Inf(1)
	for i, q := range gr.positions {
		if d := geom.Distance(p, q); d < bestDist {
			best, bestDist = int64(i), d
		}
	}
	return best
}

// ShortestPath snaps from and to onto their nearest vertices and returns
// the shortest route along filaments between them.
func (gr *Graph) ShortestPath(from, to geom.Point) (Path, error) {
	if len(gr.positions) == 0 {
		return Path{}, ErrUnreachable
	}
	s, t := gr.Nearest(from), gr.Nearest(to)
	if s == t {
		return Path{Vertices: []int64{s}, Points: []geom.Point{gr.positions[s]}}, nil
	}
	cost, ids := gr.g.ShortestPath(s, t)
	if cost < 0 || math.IsInf(cost, 1) || len(ids) == 0 {
		return Path{}, errors.Wrapf(ErrUnreachable, "from vertex %d to %d", s, t)
	}
	pts := make([]geom.Point, len(ids))
	for i, id := range ids {
		pts[i] = gr.positions[id]
	}
	return Path{Length: cost, Vertices: ids, Points: pts}, nil
}
