package geom

import "math"

// Box is an axis-aligned box given by its lower-left and upper-right corners.
type Box struct {
	Min Point
	Max Point
}

// NewBox builds a box from two opposite corners in any order.
func NewBox(a, b Point) Box {
	return Box{
		Min: Pt(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)),
		Max: Pt(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)),
	}
}

// Contains reports whether p satisfies all six face inequalities, bounds
// inclusive.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsTol is Contains with every face pushed out by tol.
func (b Box) ContainsTol(p Point, tol float64) bool {
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol &&
		p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol &&
		p.Z >= b.Min.Z-tol && p.Z <= b.Max.Z+tol
}

// Clamp returns the point of the box nearest p.
func (b Box) Clamp(p Point) Point {
	return Pt(
		math.Max(b.Min.X, math.Min(b.Max.X, p.X)),
		math.Max(b.Min.Y, math.Min(b.Max.Y, p.Y)),
		math.Max(b.Min.Z, math.Min(b.Max.Z, p.Z)),
	)
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	return Box{
		Min: Pt(math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)),
		Max: Pt(math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)),
	}
}

// Size returns the edge lengths.
func (b Box) Size() Point {
	return Pt(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y, b.Max.Z-b.Min.Z)
}

// Reflect mirrors p back across any face it has crossed and reports
// whether it moved. Points more than one box width outside are clamped.
func (b Box) Reflect(p Point) (Point, bool) {
	x, rx := reflectAxis(p.X, b.Min.X, b.Max.X)
	y, ry := reflectAxis(p.Y, b.Min.Y, b.Max.Y)
	z, rz := reflectAxis(p.Z, b.Min.Z, b.Max.Z)
	return Pt(x, y, z), rx || ry || rz
}

func reflectAxis(v, lo, hi float64) (float64, bool) {
	switch {
	case v < lo:
		v = 2*lo - v
	case v > hi:
		v = 2*hi - v
	default:
		return v, false
	}
	return math.Max(lo, math.Min(hi, v)), true
}
