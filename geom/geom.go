// Package geom provides the 3D point and segment primitives used by the
// filament network and the motor transport engine.
package geom

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidArgument is returned when a vector has an unexpected number
// of components.
var ErrInvalidArgument = errors.New("invalid argument")

// Point is a position or direction in 3D space.
type Point = r3.Vec

// Pt builds a point.
func Pt(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// PointFromSlice converts a 3-component slice to a point.
func PointFromSlice(v []float64) (Point, error) {
	if len(v) != 3 {
		return Point{}, errors.Wrapf(ErrInvalidArgument, "point needs 3 components, got %d", len(v))
	}
	return Pt(v[0], v[1], v[2]), nil
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Cross returns u x v.
func Cross(u, v Point) Point {
	return r3.Cross(u, v)
}

// CrossSlice is Cross for raw 3-component slices.
func CrossSlice(u, v []float64) ([]float64, error) {
	a, err := PointFromSlice(u)
	if err != nil {
		return nil, errors.Wrap(err, "cross product lhs")
	}
	b, err := PointFromSlice(v)
	if err != nil {
		return nil, errors.Wrap(err, "cross product rhs")
	}
	c := r3.Cross(a, b)
	return []float64{c.X, c.Y, c.Z}, nil
}

// AngleBetween returns the angle between two directions in [0, pi].
// Zero vectors yield 0.
func AngleBetween(u, v Point) float64 {
	if r3.Norm(u) == 0 || r3.Norm(v) == 0 {
		return 0
	}
	// atan2 keeps full precision near 0 and pi where acos does not
	return math.Atan2(r3.Norm(r3.Cross(u, v)), r3.Dot(u, v))
}

// Spherical returns the unit direction for polar angle theta and azimuth psi.
func Spherical(theta, psi float64) Point {
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(psi)
	return Pt(st*cp, st*sp, ct)
}
