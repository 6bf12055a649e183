// Package overlap finds filament segments near a point and the points
// where filament segments cross.
package overlap

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// rankTol is the relative singular value cutoff below which two segment
// directions are treated as parallel.
const rankTol = 1e-10

// boundsTol absorbs rounding in the solved point when testing it against
// bounding boxes; accepted points are then snapped inside both boxes.
const boundsTol = 1e-9

// DistanceFunc measures from a point to a segment.
type DistanceFunc func(geom.Point, geom.Segment) float64

// NearestSegment returns the segment whose line passes closest to p among
// those within radius, or network.NoSegment. Ties keep the lowest index.
func NearestSegment(p geom.Point, net *network.Network, radius float64) network.SegmentIndex {
	idx, _ := NearestSegmentFunc(p, net, radius, geom.DistanceToLine, nil)
	return idx
}

// NearestSegmentFunc is NearestSegment with a custom distance and an
// optional skip predicate. It also returns the winning distance.
func NearestSegmentFunc(p geom.Point, net *network.Network, radius float64, dist DistanceFunc, skip func(network.SegmentIndex) bool) (network.SegmentIndex, float64) {
	best := network.NoSegment
	bestDist := math.Inf(1)
	for i, s := range net.Segments() {
		idx := network.SegmentIndex(i)
		if skip != nil && skip(idx) {
			continue
		}
		d := dist(p, s)
		if d <= radius && d < bestDist {
			best, bestDist = idx, d
		}
	}
	return best, bestDist
}

// Intersection is a point where a probe segment meets a network segment.
type Intersection struct {
	Point geom.Point
	// Probe is the probing segment's index, or NoSegment for an external probe.
	Probe   network.SegmentIndex
	Segment network.SegmentIndex
	// T and S parametrize Point along the probe and the network segment.
	T, S float64
	// Gap is the least-squares residual distance between the two lines at
	// the solution; zero for truly intersecting segments.
	Gap float64
}

// solver holds the reusable linear system for segment pairs.
type solver struct {
	a   *mat.Dense
	rhs *mat.VecDense
	x   *mat.VecDense
	svd mat.SVD
}

func newSolver() *solver {
	return &solver{
		a:   mat.NewDense(3, 2, nil),
		rhs: mat.NewVecDense(3, nil),
		x:   mat.NewVecDense(2, nil),
	}
}

// solve finds (t, s) minimizing |a.Start + t*da - (c.Start + s*dc)|.
// ok is false for parallel or degenerate pairs.
func (sv *solver) solve(a, c geom.Segment) (t, s float64, ok bool) {
	da, dc := a.Vector(), c.Vector()
	sv.a.SetRow(0, []float64{da.X, -dc.X})
	sv.a.SetRow(1, []float64{da.Y, -dc.Y})
	sv.a.SetRow(2, []float64{da.Z, -dc.Z})
	b := r3.Sub(c.Start, a.Start)
	sv.rhs.SetVec(0, b.X)
	sv.rhs.SetVec(1, b.Y)
	sv.rhs.SetVec(2, b.Z)

	if !sv.svd.Factorize(sv.a, mat.SVDThin) {
		return 0, 0, false
	}
	if sv.svd.Rank(rankTol) < 2 {
		return 0, 0, false
	}
	sv.svd.SolveVecTo(sv.x, sv.rhs, 2)
	t, s = sv.x.AtVec(0), sv.x.AtVec(1)
	if math.IsNaN(t) || math.IsNaN(s) {
		return 0, 0, false
	}
	return t, s, true
}

// inBoth reports whether p lies in both boxes and returns it snapped inside them.
func inBoth(p geom.Point, a, b geom.Box) (geom.Point, bool) {
	if !a.ContainsTol(p, boundsTol) || !b.ContainsTol(p, boundsTol) {
		return p, false
	}
	p = b.Clamp(a.Clamp(p))
	return p, a.Contains(p) && b.Contains(p)
}

// SegmentOverlap returns the points where probe meets segments of net. A
// candidate is kept only when the solved point lies inside both segments'
// bounding boxes, inclusive.
func SegmentOverlap(probe geom.Segment, net *network.Network) []Intersection {
	return segmentOverlap(newSolver(), probe, network.NoSegment, net, nil)
}

func segmentOverlap(sv *solver, probe geom.Segment, probeIdx network.SegmentIndex, net *network.Network, out []Intersection) []Intersection {
	pb := probe.Bounds()
	for i, c := range net.Segments() {
		t, s, ok := sv.solve(probe, c)
		if !ok {
			continue
		}
		p, ok := inBoth(probe.At(t), pb, c.Bounds())
		if !ok {
			continue
		}
		out = append(out, Intersection{
			Point:   p,
			Probe:   probeIdx,
			Segment: network.SegmentIndex(i),
			T:       t,
			S:       s,
			Gap:     geom.Distance(p, c.At(s)),
		})
	}
	return out
}

// AllOverlaps probes the network with each of its own segments. Every
// crossing is reported once per direction, and consecutive segments of a
// tube meet at their shared joint.
func AllOverlaps(net *network.Network) []Intersection {
	sv := newSolver()
	var out []Intersection
	for i, s := range net.Segments() {
		out = segmentOverlap(sv, s, network.SegmentIndex(i), net, out)
	}
	return out
}

// Points extracts the intersection points.
func Points(xs []Intersection) []geom.Point {
	pts := make([]geom.Point, len(xs))
	for i, x := range xs {
		pts[i] = x.Point
	}
	return pts
}

// TubeCrossings returns each crossing between two different tubes once,
// with Probe < Segment, dropping pairs whose lines miss by more than maxGap.
func TubeCrossings(net *network.Network, maxGap float64) []Intersection {
	sv := newSolver()
	var out []Intersection
	segs := net.Segments()
	for i := range segs {
		pi := network.SegmentIndex(i)
		for j := i + 1; j < len(segs); j++ {
			pj := network.SegmentIndex(j)
			if net.TubeOf(pi) == net.TubeOf(pj) {
				continue
			}
			t, s, ok := sv.solve(segs[i], segs[j])
			if !ok {
				continue
			}
			p, ok := inBoth(segs[i].At(t), segs[i].Bounds(), segs[j].Bounds())
			if !ok {
				continue
			}
			gap := geom.Distance(p, segs[j].At(s))
			if gap > maxGap {
				continue
			}
			out = append(out, Intersection{Point: p, Probe: pi, Segment: pj, T: t, S: s, Gap: gap})
		}
	}
	return out
}
