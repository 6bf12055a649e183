package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotMismatch is returned when a loaded network does not hash to
// the fingerprint recorded with it.
var ErrSnapshotMismatch = errors.New("snapshot fingerprint mismatch")

// Snapshot holds a generated network so later runs can reuse it.
type Snapshot struct {
	Version     int    `json:"version"`
	RNGSeed     int64  `json:"rng_seed"`
	Fingerprint string `json:"fingerprint"`

	// Characteristics the network was generated from
	Volume            float64 `json:"volume"`
	MeanTubeLength    float64 `json:"mean_tube_length"`
	IntraAngle        float64 `json:"intra_angle"`
	InterAngle        float64 `json:"inter_angle"`
	Density           float64 `json:"density"`
	PersistenceLength float64 `json:"persistence_length"`
	SegmentsPerTube   int     `json:"segments_per_tube"`

	Entropy     float64   `json:"entropy"`
	TubeEntropy []float64 `json:"tube_entropy"`

	// Segments as {x1, y1, z1, x2, y2, z2}
	Segments [][]float64 `json:"segments"`
}

// NewSnapshot captures net along with the characteristics and seed that
// produced it. ch may be nil for hand-built networks.
func NewSnapshot(net *network.Network, ch *network.Characteristics, seed int64) *Snapshot {
	s := &Snapshot{
		Version:         SnapshotVersion,
		RNGSeed:         seed,
		Fingerprint:     fmt.Sprintf("%016x", net.Fingerprint()),
		SegmentsPerTube: net.SegmentsPerTube(),
		Entropy:         net.Entropy(),
		TubeEntropy:     make([]float64, net.NumTubes()),
		Segments:        make([][]float64, net.Len()),
	}
	if ch != nil {
		s.Volume = ch.Volume()
		s.MeanTubeLength = ch.MeanTubeLength()
		s.IntraAngle = ch.IntraAngle()
		s.InterAngle = ch.InterAngle()
		s.Density = ch.Density()
		s.PersistenceLength = ch.PersistenceLength()
	}
	for t := range s.TubeEntropy {
		s.TubeEntropy[t] = net.TubeEntropy(network.TubeIndex(t))
	}
	for i, seg := range net.Segments() {
		s.Segments[i] = seg.Flat()
	}
	return s
}

// Network rebuilds the captured network and checks its fingerprint.
func (s *Snapshot) Network() (*network.Network, error) {
	if s.Version != SnapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version %d", s.Version)
	}
	segs := make([]geom.Segment, len(s.Segments))
	for i, flat := range s.Segments {
		seg, err := geom.SegmentFromSlice(flat)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %d", i)
		}
		segs[i] = seg
	}
	net, err := network.FromSegments(segs, s.SegmentsPerTube)
	if err != nil {
		return nil, err
	}
	if err := net.RestoreEntropy(s.Entropy, s.TubeEntropy); err != nil {
		return nil, err
	}
	if got := fmt.Sprintf("%016x", net.Fingerprint()); got != s.Fingerprint {
		return nil, errors.Wrapf(ErrSnapshotMismatch, "got %s, recorded %s", got, s.Fingerprint)
	}
	return net, nil
}

// Characteristics returns base with the recorded characteristics applied.
// Snapshots of hand-built networks carry none and leave base's values, but
// segments per tube always follows the saved network.
func (s *Snapshot) Characteristics(base *network.Characteristics) *network.Characteristics {
	ch := *base
	if s.Volume > 0 {
		ch.SetVolume(s.Volume)
		ch.SetMeanTubeLength(s.MeanTubeLength)
		ch.SetIntraAngle(s.IntraAngle)
		ch.SetInterAngle(s.InterAngle)
		ch.SetDensity(s.Density)
		ch.SetPersistenceLength(s.PersistenceLength)
	}
	ch.SetSegmentsPerTube(s.SegmentsPerTube)
	return &ch
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("network_%s.json", snapshot.Fingerprint))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
