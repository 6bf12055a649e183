package network

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/microtubule/geom"
)

type genOptions struct {
	bins   int
	fixed  bool
	lo, hi float64
}

// Option adjusts how a network is generated.
type Option func(*genOptions)

// WithEntropyBins sets the histogram bin count used for tube entropy.
func WithEntropyBins(bins int) Option {
	return func(o *genOptions) {
		if bins > 0 {
			o.bins = bins
		}
	}
}

// WithEntropyRange bins angles over [lo, hi] instead of their observed range.
func WithEntropyRange(lo, hi float64) Option {
	return func(o *genOptions) {
		o.fixed = true
		o.lo, o.hi = lo, hi
	}
}

// WithCircleEntropy bins angles over [-pi, pi].
func WithCircleEntropy() Option {
	return WithEntropyRange(-math.Pi, math.Pi)
}

func buildOptions(opts []Option) genOptions {
	o := genOptions{bins: DefaultEntropyBins}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Generate builds a new network from ch using src as the only source of
// randomness. Each tube starts at a Gaussian point and each of its
// segments points in the direction of two Gaussian bend angles whose
// spread is set by the persistence length. The network entropy is stored
// on both the network and ch.
func Generate(ch *Characteristics, src rand.Source, opts ...Option) (*Network, error) {
	n := &Network{}
	if err := Regenerate(n, ch, src, opts...); err != nil {
		return nil, err
	}
	return n, nil
}

// Regenerate overwrites n in place with a fresh network. Segment indices
// held from the previous contents are meaningless afterwards.
func Regenerate(n *Network, ch *Characteristics, src rand.Source, opts ...Option) error {
	if err := ch.validate(); err != nil {
		return err
	}
	o := buildOptions(opts)

	total := ch.numTubes * ch.segPerTube
	if cap(n.segments) >= total {
		n.segments = n.segments[:total]
	} else {
		n.segments = make([]geom.Segment, total)
	}
	if cap(n.tubeEntropy) >= ch.numTubes {
		n.tubeEntropy = n.tubeEntropy[:ch.numTubes]
	} else {
		n.tubeEntropy = make([]float64, ch.numTubes)
	}
	n.segPerTube = ch.segPerTube

	start := distuv.Normal{Mu: 0, Sigma: ch.StartSigma(), Src: src}
	angle := distuv.Normal{Mu: 0, Sigma: ch.AngleSigma(), Src: src}
	theta := make([]float64, ch.segPerTube)
	psi := make([]float64, ch.segPerTube)

	n.entropy = 0
	for t := 0; t < ch.numTubes; t++ {
		p := geom.Pt(start.Rand(), start.Rand(), start.Rand())
		base := t * ch.segPerTube
		for s := 0; s < ch.segPerTube; s++ {
			theta[s] = angle.Rand()
			psi[s] = angle.Rand()
			end := r3.Add(p, r3.Scale(ch.segLength, geom.Spherical(theta[s], psi[s])))
			n.segments[base+s] = geom.Seg(p, end)
			p = end
		}

		h := o.entropy(theta) + o.entropy(psi)
		n.tubeEntropy[t] = h
		n.entropy += h
	}
	ch.structuralEntropy = n.entropy

	slog.Debug("network generated",
		"tubes", ch.numTubes,
		"segments", total,
		"persistence_length", ch.persistenceLength,
		"entropy", n.entropy,
	)
	return nil
}

func (o genOptions) entropy(samples []float64) float64 {
	if o.fixed {
		return EntropyInRange(samples, o.bins, o.lo, o.hi)
	}
	return Entropy(samples, o.bins)
}
