package network

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// SweepPoint is one persistence length and the entropy it produced.
type SweepPoint struct {
	PersistenceLength float64 `csv:"persistence_length"`
	Entropy           float64 `csv:"entropy"`
	Fingerprint       uint64  `csv:"fingerprint"`
}

// PersistenceSweep regenerates one network in place for each persistence
// length and records the resulting entropy. visit, if non-nil, sees each
// network before it is overwritten. ch keeps the last length on return.
func PersistenceSweep(ch *Characteristics, src rand.Source, lengths []float64, visit func(SweepPoint, *Network), opts ...Option) ([]SweepPoint, error) {
	net := &Network{}
	points := make([]SweepPoint, 0, len(lengths))
	for _, lp := range lengths {
		ch.SetPersistenceLength(lp)
		if err := Regenerate(net, ch, src, opts...); err != nil {
			return points, errors.Wrapf(err, "persistence length %v", lp)
		}
		p := SweepPoint{PersistenceLength: lp, Entropy: net.Entropy(), Fingerprint: net.Fingerprint()}
		points = append(points, p)
		if visit != nil {
			visit(p, net)
		}
	}
	return points, nil
}

// LinearLengths returns n evenly spaced values from lo to hi inclusive.
func LinearLengths(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// EstimatePersistenceLength recovers the persistence length from segment
// directions. Polar angles are drawn from N(0, sqrt(2L/lp)), so the mean
// squared polar angle estimates 2L/lp. Returns +Inf for perfectly straight
// networks and 0 for empty ones.
func EstimatePersistenceLength(n *Network) float64 {
	if n.Len() == 0 {
		return 0
	}
	var sumSq, sumLen float64
	for _, s := range n.segments {
		d := s.Vector()
		l := r3.Norm(d)
		if l == 0 {
			continue
		}
		theta := math.Acos(math.Max(-1, math.Min(1, d.Z/l)))
		sumSq += theta * theta
		sumLen += l
	}
	count := float64(n.Len())
	if sumSq == 0 {
		return math.Inf(1)
	}
	return 2 * (sumLen / count) / (sumSq / count)
}
