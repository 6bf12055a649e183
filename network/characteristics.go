// Package network generates microtubule filament networks and measures
// their structural entropy.
package network

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"
)

// Default characteristics of a generated network.
const (
	DefaultVolume            = 25.0
	DefaultMeanTubeLength    = 100.0
	DefaultIntraAngle        = 30.0
	DefaultInterAngle        = 10.0
	DefaultDensity           = 10.0
	DefaultPersistenceLength = 50.0
	DefaultSegmentsPerTube   = 10
)

// segmentsPerTubeLength is the ratio of mean tube length to segment length.
const segmentsPerTubeLength = 5.0

// Characteristics describes the network to generate. Configured values
// change only through setters, and every setter recomputes the derived
// counts so they never go stale.
type Characteristics struct {
	volume            float64
	meanTubeLength    float64
	intraAngle        float64
	interAngle        float64
	density           float64
	persistenceLength float64
	segPerTube        int

	// Derived
	segLength   float64
	numSegments int
	numTubes    int

	// Computed by the generator
	structuralEntropy float64
}

// DefaultCharacteristics returns the reference network description.
func DefaultCharacteristics() *Characteristics {
	c := &Characteristics{
		volume:            DefaultVolume,
		meanTubeLength:    DefaultMeanTubeLength,
		intraAngle:        DefaultIntraAngle,
		interAngle:        DefaultInterAngle,
		density:           DefaultDensity,
		persistenceLength: DefaultPersistenceLength,
		segPerTube:        DefaultSegmentsPerTube,
	}
	c.derive()
	return c
}

func (c *Characteristics) derive() {
	c.segLength = c.meanTubeLength / segmentsPerTubeLength
	c.numSegments = int(c.density * c.volume)
	if c.segPerTube > 0 {
		c.numTubes = c.numSegments / c.segPerTube
	} else {
		c.numTubes = 0
	}
}

// SetVolume sets the tube volume.
func (c *Characteristics) SetVolume(v float64) { c.volume = v; c.derive() }

// SetMeanTubeLength sets the mean tube length, and with it the segment length.
func (c *Characteristics) SetMeanTubeLength(l float64) { c.meanTubeLength = l; c.derive() }

// SetIntraAngle sets the mean angle between segments of one tube, in degrees.
func (c *Characteristics) SetIntraAngle(deg float64) { c.intraAngle = deg; c.derive() }

// SetInterAngle sets the mean angle between tubes, in degrees.
func (c *Characteristics) SetInterAngle(deg float64) { c.interAngle = deg; c.derive() }

// SetDensity sets the mean segment density.
func (c *Characteristics) SetDensity(d float64) { c.density = d; c.derive() }

// SetPersistenceLength sets the persistence length.
func (c *Characteristics) SetPersistenceLength(lp float64) { c.persistenceLength = lp; c.derive() }

// SetSegmentsPerTube sets the number of segments in each tube.
func (c *Characteristics) SetSegmentsPerTube(n int) { c.segPerTube = n; c.derive() }

func (c *Characteristics) Volume() float64            { return c.volume }
func (c *Characteristics) MeanTubeLength() float64    { return c.meanTubeLength }
func (c *Characteristics) IntraAngle() float64        { return c.intraAngle }
func (c *Characteristics) InterAngle() float64        { return c.interAngle }
func (c *Characteristics) Density() float64           { return c.density }
func (c *Characteristics) PersistenceLength() float64 { return c.persistenceLength }
func (c *Characteristics) SegmentsPerTube() int       { return c.segPerTube }
func (c *Characteristics) SegmentLength() float64     { return c.segLength }
func (c *Characteristics) NumSegments() int           { return c.numSegments }
func (c *Characteristics) NumTubes() int              { return c.numTubes }

// StructuralEntropy returns the entropy of the most recently generated network.
func (c *Characteristics) StructuralEntropy() float64 { return c.structuralEntropy }

// AngleSigma returns the standard deviation of the bend angles,
// sqrt(2*segLength/persistenceLength).
func (c *Characteristics) AngleSigma() float64 {
	return math.Sqrt(2 * c.segLength / c.persistenceLength)
}

// StartSigma returns the standard deviation of tube start coordinates.
func (c *Characteristics) StartSigma() float64 {
	return math.Cbrt(c.volume)
}

func (c *Characteristics) validate() error {
	switch {
	case c.segPerTube <= 0:
		return errors.Wrapf(ErrInvalidCharacteristics, "segments per tube %d", c.segPerTube)
	case c.numTubes <= 0:
		return errors.Wrapf(ErrInvalidCharacteristics, "%d segments cannot fill a tube of %d", c.numSegments, c.segPerTube)
	case !(c.segLength > 0):
		return errors.Wrapf(ErrInvalidCharacteristics, "segment length %v", c.segLength)
	case !(c.persistenceLength > 0):
		return errors.Wrapf(ErrInvalidCharacteristics, "persistence length %v", c.persistenceLength)
	case !(c.volume >= 0):
		return errors.Wrapf(ErrInvalidCharacteristics, "volume %v", c.volume)
	}
	return nil
}

// LogValue implements slog.LogValuer for structured logging.
func (c *Characteristics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("volume", c.volume),
		slog.Float64("mean_tube_length", c.meanTubeLength),
		slog.Float64("intra_angle", c.intraAngle),
		slog.Float64("inter_angle", c.interAngle),
		slog.Float64("density", c.density),
		slog.Float64("persistence_length", c.persistenceLength),
		slog.Float64("segment_length", c.segLength),
		slog.Int("segments", c.numSegments),
		slog.Int("segments_per_tube", c.segPerTube),
		slog.Int("tubes", c.numTubes),
		slog.Float64("entropy", c.structuralEntropy),
	)
}

// String renders the characteristics on one line.
func (c *Characteristics) String() string {
	return fmt.Sprintf(
		"volume=%g mean_length=%g intra=%g inter=%g density=%g persistence=%g seg_length=%g segments=%d seg_per_tube=%d tubes=%d entropy=%.4f",
		c.volume, c.meanTubeLength, c.intraAngle, c.interAngle, c.density,
		c.persistenceLength, c.segLength, c.numSegments, c.segPerTube, c.numTubes, c.structuralEntropy,
	)
}
