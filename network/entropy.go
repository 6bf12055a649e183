package network

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultEntropyBins is the number of equal-width histogram bins used for
// angle entropy.
const DefaultEntropyBins = 100

// Entropy returns the Shannon entropy (natural log) of samples binned into
// equal-width bins spanning the observed range. Empty bins contribute
// nothing. A sample set with no spread has entropy 0.
func Entropy(samples []float64, bins int) float64 {
	if len(samples) == 0 {
		return 0
	}
	lo, hi := floats.Min(samples), floats.Max(samples)
	if lo == hi {
		return 0
	}
	return EntropyInRange(samples, bins, lo, hi)
}

// EntropyInRange is Entropy over the fixed range [lo, hi]. Samples outside
// the range are counted in the nearest edge bin.
func EntropyInRange(samples []float64, bins int, lo, hi float64) float64 {
	if len(samples) == 0 || bins < 1 || !(hi > lo) {
		return 0
	}

	x := make([]float64, len(samples))
	for i, v := range samples {
		x[i] = math.Max(lo, math.Min(hi, v))
	}
	sort.Float64s(x)

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram wants the last divider strictly above the largest sample
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)
	floats.Scale(1/float64(len(x)), counts)
	return stat.Entropy(counts)
}
