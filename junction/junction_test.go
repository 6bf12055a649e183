package junction

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/overlap"
	"github.com/pthm-cable/microtubule/rng"
)

func crossedNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.FromSegments([]geom.Segment{
		geom.Seg(geom.Pt(0, 0, 0), geom.Pt(10, 10, 0)),
		geom.Seg(geom.Pt(10, 0, 0), geom.Pt(0, 10, 0)),
		geom.Seg(geom.Pt(50, 50, 50), geom.Pt(60, 60, 60)),
	}, 1)
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func TestShortestPathThroughJunction(t *testing.T) {
	net := crossedNetwork(t)
	g, err := Build(net, overlap.TubeCrossings(net, 1e-9))
	if err != nil {
		t.Fatal(err)
	}
	if g.Vertices() != 7 || g.Junctions() != 1 {
		t.Fatalf("vertices=%d junctions=%d, want 7 and 1", g.Vertices(), g.Junctions())
	}

	p, err := g.ShortestPath(geom.Pt(-1, -1, 0), geom.Pt(11, -1, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := 10 * math.Sqrt2
	if math.Abs(p.Length-want) > 1e-6 {
		t.Errorf("path length = %v, want %v", p.Length, want)
	}
	if len(p.Points) != 3 || geom.Distance(p.Points[1], geom.Pt(5, 5, 0)) > 1e-9 {
		t.Errorf("path = %v, want through (5,5,0)", p.Points)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	net := crossedNetwork(t)
	g, err := Build(net, overlap.TubeCrossings(net, 1e-9))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.ShortestPath(geom.Pt(0, 0, 0), geom.Pt(60, 60, 60)); !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}

func TestShortestPathSameVertex(t *testing.T) {
	net := crossedNetwork(t)
	g, err := Build(net, nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := g.ShortestPath(geom.Pt(0, 0, 0), geom.Pt(0.1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if p.Length != 0 || len(p.Points) != 1 {
		t.Errorf("path = %+v, want a single vertex", p)
	}
}

func TestBuildGeneratedNetwork(t *testing.T) {
	c := network.DefaultCharacteristics()
	c.SetPersistenceLength(5)
	net, err := network.Generate(c, rng.New(31))
	if err != nil {
		t.Fatal(err)
	}
	g, err := Build(net, overlap.AllOverlaps(net))
	if err != nil {
		t.Fatal(err)
	}

	// walking a tube end to end follows its own chain
	pts := net.TubePoints(0)
	p, err := g.ShortestPath(pts[0], pts[len(pts)-1])
	if err != nil {
		t.Fatal(err)
	}
	tubeLen := float64(c.SegmentsPerTube()) * c.SegmentLength()
	if p.Length > tubeLen+1e-6 {
		t.Errorf("path length %v exceeds tube length %v", p.Length, tubeLen)
	}
}
