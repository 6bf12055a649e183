// Package field derives a direction field from a filament network and
// resamples it onto a regular mesh.
package field

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// DefaultMeshSteps is the number of mesh points per axis.
const DefaultMeshSteps = 10

// Sample is one direction anchored at a point.
type Sample struct {
	Anchor geom.Point
	Vector geom.Point
}

// Field is an ordered collection of samples.
type Field []Sample

// Build returns one sample per network segment, anchored at the segment
// start and pointing along it.
func Build(net *network.Network) Field {
	f := make(Field, net.Len())
	for i, s := range net.Segments() {
		f[i] = Sample{Anchor: s.Start, Vector: s.Vector()}
	}
	return f
}

// Nearest returns the sample whose anchor is closest to p. Ties keep the
// earliest sample. ok is false for an empty field.
func Nearest(p geom.Point, f Field) (Sample, bool) {
	if len(f) == 0 {
		return Sample{}, false
	}
	best := 0
	bestDist := geom.Distance(p, f[0].Anchor)
	for i := 1; i < len(f); i++ {
		if d := geom.Distance(p, f[i].Anchor); d < bestDist {
			best, bestDist = i, d
		}
	}
	return f[best], true
}

// Bounds returns the box enclosing all anchors.
func (f Field) Bounds() geom.Box {
	if len(f) == 0 {
		return geom.Box{}
	}
	b := geom.Box{Min: f[0].Anchor, Max: f[0].Anchor}
	for _, s := range f[1:] {
		b = b.Union(geom.Box{Min: s.Anchor, Max: s.Anchor})
	}
	return b
}

// Anchors returns the anchor points in order.
func (f Field) Anchors() []geom.Point {
	pts := make([]geom.Point, len(f))
	for i, s := range f {
		pts[i] = s.Anchor
	}
	return pts
}

// Mesh samples f on a regular grid of steps points per axis spanning the
// anchor bounds. Each mesh point takes the vector of its nearest anchor,
// or the zero vector when that anchor is more than two x-steps away.
func Mesh(f Field, steps int) Field {
	if len(f) == 0 || steps < 1 {
		return nil
	}
	b := f.Bounds()
	xs := axis(b.Min.X, b.Max.X, steps)
	ys := axis(b.Min.Y, b.Max.Y, steps)
	zs := axis(b.Min.Z, b.Max.Z, steps)

	cutoff := math.Inf(1)
	if steps > 1 {
		cutoff = 2 * (xs[1] - xs[0])
	}

	mesh := make(Field, 0, steps*steps*steps)
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				p := geom.Pt(x, y, z)
				near, _ := Nearest(p, f)
				v := geom.Point{}
				if geom.Distance(p, near.Anchor) <= cutoff {
					v = near.Vector
				}
				mesh = append(mesh, Sample{Anchor: p, Vector: v})
			}
		}
	}
	return mesh
}

func axis(lo, hi float64, steps int) []float64 {
	if steps == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, steps), lo, hi)
}
