// Package surface models spherical volume surfaces that either reflect a
// moving motor or passively count filament and motor crossings.
package surface

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// Kind selects how a surface interacts with motion.
type Kind int

const (
	// ReflectiveBarrier mirrors motion that would cross the sphere.
	ReflectiveBarrier Kind = iota
	// FluxMeter counts crossings without altering motion.
	FluxMeter
)

func (k Kind) String() string {
	switch k {
	case ReflectiveBarrier:
		return "reflective_barrier"
	case FluxMeter:
		return "flux_meter"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "reflective_barrier", "barrier":
		return ReflectiveBarrier, nil
	case "flux_meter", "meter":
		return FluxMeter, nil
	}
	return 0, errors.Errorf("unknown surface kind %q", s)
}

// Surface is a sphere in the volume.
type Surface struct {
	Center geom.Point
	Radius float64
	Kind   Kind

	inward, outward int
}

// New builds a surface. The radius must be positive.
func New(center geom.Point, radius float64, kind Kind) (*Surface, error) {
	if !(radius > 0) {
		return nil, errors.Errorf("surface radius must be positive, got %v", radius)
	}
	return &Surface{Center: center, Radius: radius, Kind: kind}, nil
}

// Contains reports whether p is inside or on the sphere.
func (s *Surface) Contains(p geom.Point) bool {
	return geom.Distance(p, s.Center) <= s.Radius
}

// Normal returns the outward unit normal at surface point p.
func (s *Surface) Normal(p geom.Point) geom.Point {
	return r3.Unit(r3.Sub(p, s.Center))
}

// roots returns the parameters in [0, 1] where seg meets the sphere, in
// increasing order.
func (s *Surface) roots(seg geom.Segment) []float64 {
	d := seg.Vector()
	f := r3.Sub(seg.Start, s.Center)
	a := r3.Dot(d, d)
	if a == 0 {
		return nil
	}
	b := 2 * r3.Dot(f, d)
	c := r3.Dot(f, f) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}

	var ts []float64
	if disc == 0 {
		ts = []float64{-b / (2 * a)}
	} else {
		sq := math.Sqrt(disc)
		ts = []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)}
	}
	out := ts[:0]
	for _, t := range ts {
		if t >= 0 && t <= 1 {
			out = append(out, t)
		}
	}
	return out
}

// Intersections returns the points where seg meets the sphere, ordered
// from seg.Start.
func (s *Surface) Intersections(seg geom.Segment) []geom.Point {
	ts := s.roots(seg)
	pts := make([]geom.Point, len(ts))
	for i, t := range ts {
		pts[i] = seg.At(t)
	}
	return pts
}

// Reflect handles a step from last to *cur. If the step crosses the
// sphere, the part of the step past the crossing is mirrored about the
// tangent plane there, so the motor stays on the side it started. Returns
// whether *cur was changed.
func (s *Surface) Reflect(last geom.Point, cur *geom.Point) bool {
	inside := s.Contains(last)
	ts := s.roots(geom.Seg(last, *cur))
	if len(ts) == 0 {
		return false
	}
	// an outside step may pass clean through the sphere
	if inside == s.Contains(*cur) && (inside || len(ts) < 2) {
		return false
	}

	x := geom.Seg(last, *cur).At(ts[0])
	n := s.Normal(x)
	rem := r3.Sub(*cur, x)
	mirrored := r3.Sub(rem, r3.Scale(2*r3.Dot(rem, n), n))
	next := r3.Add(x, mirrored)

	// a long step can still end on the far side after mirroring
	if s.Contains(next) != inside {
		r := s.Radius
		if inside {
			r = math.Nextafter(r, 0)
		} else {
			r = math.Nextafter(r, math.Inf(1))
		}
		next = r3.Add(s.Center, r3.Scale(r, n))
	}
	*cur = next
	slog.Debug("surface reflection", "at", x, "inside", inside)
	return true
}

// Stop returns where a motor moving along seg must halt to stay on the
// side of a barrier that seg.Start is on. ok is false for meters and for
// segments that never cross.
func (s *Surface) Stop(seg geom.Segment) (p geom.Point, ok bool) {
	if s.Kind != ReflectiveBarrier {
		return geom.Point{}, false
	}
	inside := s.Contains(seg.Start)
	d := seg.Vector()
	for _, t := range s.roots(seg) {
		n := s.Normal(seg.At(t))
		dn := r3.Dot(d, n)
		// only a crossing away from the start side stops the motor
		if (inside && dn <= 0) || (!inside && dn >= 0) {
			continue
		}
		r := math.Nextafter(s.Radius, math.Inf(1))
		if inside {
			r = math.Nextafter(s.Radius, 0)
		}
		return r3.Add(s.Center, r3.Scale(r, n)), true
	}
	return geom.Point{}, false
}

// Observe records a motor step from last to cur against the meter counts.
func (s *Surface) Observe(last, cur geom.Point) {
	for _, x := range s.Intersections(geom.Seg(last, cur)) {
		if r3.Dot(r3.Sub(cur, last), s.Normal(x)) > 0 {
			s.outward++
		} else {
			s.inward++
		}
	}
}

// Interact applies the surface to a motor step: a barrier reflects it and
// a meter observes it.
func (s *Surface) Interact(last geom.Point, cur *geom.Point) bool {
	if s.Kind == ReflectiveBarrier {
		return s.Reflect(last, cur)
	}
	s.Observe(last, *cur)
	return false
}

// MotorCrossings returns the inward and outward motor crossings observed.
func (s *Surface) MotorCrossings() (inward, outward int) {
	return s.inward, s.outward
}

// Reset clears the motor crossing counts.
func (s *Surface) Reset() {
	s.inward, s.outward = 0, 0
}

// FluxReading summarizes filament crossings through a sphere.
type FluxReading struct {
	Crossings int
	Inward    int
	Outward   int
	// Net is the sum over crossings of the unit filament direction dotted
	// with the outward normal.
	Net float64
	// Density is crossings per unit surface area.
	Density float64
}

// LogValue implements slog.LogValuer for structured logging.
func (f FluxReading) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("crossings", f.Crossings),
		slog.Int("inward", f.Inward),
		slog.Int("outward", f.Outward),
		slog.Float64("net", f.Net),
		slog.Float64("density", f.Density),
	)
}

// Flux measures how the filaments of net cross the sphere.
func (s *Surface) Flux(net *network.Network) FluxReading {
	var r FluxReading
	for _, seg := range net.Segments() {
		dir := r3.Unit(seg.Vector())
		for _, x := range s.Intersections(seg) {
			dn := r3.Dot(dir, s.Normal(x))
			r.Crossings++
			if dn > 0 {
				r.Outward++
			} else {
				r.Inward++
			}
			r.Net += dn
		}
	}
	r.Density = float64(r.Crossings) / (4 * math.Pi * s.Radius * s.Radius)
	return r
}

// FluxMeter returns the filament crossing density through the sphere.
func (s *Surface) FluxMeter(net *network.Network) float64 {
	return s.Flux(net).Density
}

// VectorAngle returns the angle in [0, pi] between a segment's direction
// and the sphere radius vector at a crossing.
func VectorAngle(seg geom.Segment, radius geom.Point) float64 {
	return geom.AngleBetween(seg.Vector(), radius)
}

// CrossingAngles returns VectorAngle at each place seg meets the sphere.
func (s *Surface) CrossingAngles(seg geom.Segment) []float64 {
	pts := s.Intersections(seg)
	angles := make([]float64, len(pts))
	for i, x := range pts {
		angles[i] = VectorAngle(seg, r3.Sub(x, s.Center))
	}
	return angles
}
