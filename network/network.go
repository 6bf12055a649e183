package network

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/pthm-cable/microtubule/geom"
)

// ErrInvalidCharacteristics is returned when characteristics describe an
// empty or degenerate network.
var ErrInvalidCharacteristics = errors.New("invalid network characteristics")

// SegmentIndex addresses a segment in the flat segment list of a network.
type SegmentIndex int

// TubeIndex addresses a tube.
type TubeIndex int

// NoSegment is returned by searches that find no qualifying segment.
const NoSegment SegmentIndex = -1

// Network is an ordered collection of tubes, each a chain of segments
// where segment i+1 starts at the end of segment i. It is read-only after
// generation except through Regenerate.
type Network struct {
	segments    []geom.Segment
	segPerTube  int
	tubeEntropy []float64
	entropy     float64
}

// FromSegments builds a network from explicit segments, grouped into
// tubes of segPerTube. Used for hand-built fixtures and imports.
func FromSegments(segments []geom.Segment, segPerTube int) (*Network, error) {
	if segPerTube <= 0 || len(segments)%segPerTube != 0 {
		return nil, errors.Wrapf(ErrInvalidCharacteristics, "%d segments do not split into tubes of %d", len(segments), segPerTube)
	}
	n := &Network{
		segments:    append([]geom.Segment(nil), segments...),
		segPerTube:  segPerTube,
		tubeEntropy: make([]float64, len(segments)/segPerTube),
	}
	return n, nil
}

// Len returns the number of segments.
func (n *Network) Len() int { return len(n.segments) }

// NumTubes returns the number of tubes.
func (n *Network) NumTubes() int {
	if n.segPerTube == 0 {
		return 0
	}
	return len(n.segments) / n.segPerTube
}

// SegmentsPerTube returns the number of segments in each tube.
func (n *Network) SegmentsPerTube() int { return n.segPerTube }

// Segment returns the segment at index i.
func (n *Network) Segment(i SegmentIndex) geom.Segment { return n.segments[i] }

// Segments returns the flat segment list. Callers must not modify it.
func (n *Network) Segments() []geom.Segment { return n.segments }

// Tube returns the segments of tube t. Callers must not modify it.
func (n *Network) Tube(t TubeIndex) []geom.Segment {
	lo := int(t) * n.segPerTube
	return n.segments[lo : lo+n.segPerTube]
}

// TubeOf returns the tube owning segment i.
func (n *Network) TubeOf(i SegmentIndex) TubeIndex {
	return TubeIndex(int(i) / n.segPerTube)
}

// LastSegment returns the index of the final segment of tube t.
func (n *Network) LastSegment(t TubeIndex) SegmentIndex {
	return SegmentIndex((int(t)+1)*n.segPerTube - 1)
}

// Entropy returns the structural entropy of the whole network.
func (n *Network) Entropy() float64 { return n.entropy }

// TubeEntropy returns the structural entropy of tube t.
func (n *Network) TubeEntropy(t TubeIndex) float64 { return n.tubeEntropy[t] }

// RestoreEntropy sets entropies computed elsewhere, for networks rebuilt
// from saved segments.
func (n *Network) RestoreEntropy(total float64, perTube []float64) error {
	if len(perTube) != n.NumTubes() {
		return errors.Wrapf(ErrInvalidCharacteristics, "%d tube entropies for %d tubes", len(perTube), n.NumTubes())
	}
	n.entropy = total
	copy(n.tubeEntropy, perTube)
	return nil
}

// TubePoints returns the chain of points along tube t, start of the first
// segment through the end of the last.
func (n *Network) TubePoints(t TubeIndex) []geom.Point {
	tube := n.Tube(t)
	pts := make([]geom.Point, 0, len(tube)+1)
	pts = append(pts, tube[0].Start)
	for _, s := range tube {
		pts = append(pts, s.End)
	}
	return pts
}

// Points returns the start points of all segments.
func (n *Network) Points() []geom.Point {
	pts := make([]geom.Point, len(n.segments))
	for i, s := range n.segments {
		pts[i] = s.Start
	}
	return pts
}

// Bounds returns the box enclosing every segment.
func (n *Network) Bounds() geom.Box {
	if len(n.segments) == 0 {
		return geom.Box{}
	}
	b := n.segments[0].Bounds()
	for _, s := range n.segments[1:] {
		b = b.Union(s.Bounds())
	}
	return b
}

// Fingerprint hashes the segment coordinates, identifying a generated
// network across runs with the same seed and characteristics.
func (n *Network) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n.segPerTube))
	d.Write(buf[:])
	for _, s := range n.segments {
		for _, v := range s.Flat() {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			d.Write(buf[:])
		}
	}
	return d.Sum64()
}
