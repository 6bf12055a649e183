package geom

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is a directed piece of filament from Start to End.
type Segment struct {
	Start Point
	End   Point
}

// Seg builds a segment from two points.
func Seg(start, end Point) Segment {
	return Segment{Start: start, End: end}
}

// SegmentFromSlice converts a 6-component slice (start then end) to a segment.
func SegmentFromSlice(v []float64) (Segment, error) {
	if len(v) != 6 {
		return Segment{}, errors.Wrapf(ErrInvalidArgument, "segment needs 6 components, got %d", len(v))
	}
	return Seg(Pt(v[0], v[1], v[2]), Pt(v[3], v[4], v[5])), nil
}

// Flat returns the segment as start then end coordinates.
func (s Segment) Flat() []float64 {
	return []float64{s.Start.X, s.Start.Y, s.Start.Z, s.End.X, s.End.Y, s.End.Z}
}

// Vector returns End - Start.
func (s Segment) Vector() Point {
	return r3.Sub(s.End, s.Start)
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return r3.Norm(s.Vector())
}

// At returns Start + t*(End-Start).
func (s Segment) At(t float64) Point {
	return r3.Add(s.Start, r3.Scale(t, s.Vector()))
}

// Bounds returns the axis-aligned bounding box of the segment.
func (s Segment) Bounds() Box {
	return Box{
		Min: Pt(math.Min(s.Start.X, s.End.X), math.Min(s.Start.Y, s.End.Y), math.Min(s.Start.Z, s.End.Z)),
		Max: Pt(math.Max(s.Start.X, s.End.X), math.Max(s.Start.Y, s.End.Y), math.Max(s.Start.Z, s.End.Z)),
	}
}

// DistanceToLine returns the distance from p to the infinite line through s:
// |(p-start) x (p-end)| / |end-start|. A degenerate segment falls back to
// the distance to its start point.
func DistanceToLine(p Point, s Segment) float64 {
	base := s.Length()
	if base == 0 {
		return Distance(p, s.Start)
	}
	c := r3.Cross(r3.Sub(p, s.Start), r3.Sub(p, s.End))
	return r3.Norm(c) / base
}

// DistanceToSegment returns the distance from p to the closest point of the
// finite segment.
func DistanceToSegment(p Point, s Segment) float64 {
	return Distance(p, s.At(ClosestParam(p, s)))
}

// ClosestParam returns the parameter in [0, 1] of the point on s nearest p.
func ClosestParam(p Point, s Segment) float64 {
	d := s.Vector()
	l2 := r3.Norm2(d)
	if l2 == 0 {
		return 0
	}
	t := r3.Dot(r3.Sub(p, s.Start), d) / l2
	return math.Max(0, math.Min(1, t))
}

// DistanceSlice dispatches on the size of other: 3 components is a point,
// 6 components is a segment (line distance). Anything else is
// ErrInvalidArgument.
func DistanceSlice(pt, other []float64) (float64, error) {
	p, err := PointFromSlice(pt)
	if err != nil {
		return 0, err
	}
	switch len(other) {
	case 3:
		q, _ := PointFromSlice(other)
		return Distance(p, q), nil
	case 6:
		s, _ := SegmentFromSlice(other)
		return DistanceToLine(p, s), nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "distance operand has %d components", len(other))
	}
}
