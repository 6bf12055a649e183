// Package transport drives a molecular motor through a filament network,
// alternating Brownian flight with guided walks along filaments.
package transport

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// State is the motor's position in the bind/float/walk cycle.
type State int

const (
	// Unbound motors float by Brownian motion.
	Unbound State = iota
	// Bound motors walk along a filament.
	Bound
	// Arrived motors reached the destination box.
	Arrived
	// TimedOut motors exhausted their step or iteration budget.
	TimedOut
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Arrived:
		return "arrived"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions happen from s.
func (s State) Terminal() bool {
	return s == Arrived || s == TimedOut
}

// Motor is one cargo-carrying particle. It belongs to a single run.
type Motor struct {
	RunID       string
	Position    geom.Point
	State       State
	Destination *geom.Box

	// History holds every visited position, starting with the initial one.
	History []geom.Point
	// Elapsed is simulated time in seconds. It never decreases.
	Elapsed float64

	BoundSegment network.SegmentIndex

	Steps        int
	Binds        int
	WalkDistance float64

	// departed is the tube most recently walked off, excluded from the
	// next binding search.
	departed network.TubeIndex
}

// NewMotor places an unbound motor at start. dest may be nil, in which
// case the motor can never arrive.
func NewMotor(start geom.Point, dest *geom.Box) *Motor {
	return &Motor{
		RunID:        uuid.NewString(),
		Position:     start,
		State:        Unbound,
		Destination:  dest,
		History:      []geom.Point{start},
		BoundSegment: network.NoSegment,
		departed:     -1,
	}
}

// InDestination reports whether the motor lies inside its destination box,
// all six faces inclusive.
func (m *Motor) InDestination() bool {
	return m.Destination != nil && m.Destination.Contains(m.Position)
}

func (m *Motor) moveTo(p geom.Point) {
	m.Position = p
	m.History = append(m.History, p)
}

func (m *Motor) advance(dt float64) {
	if dt > 0 {
		m.Elapsed += dt
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (m *Motor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", m.RunID),
		slog.String("state", m.State.String()),
		slog.Float64("elapsed", m.Elapsed),
		slog.Int("steps", m.Steps),
		slog.Int("binds", m.Binds),
		slog.Float64("walk_distance", m.WalkDistance),
		slog.Int("history", len(m.History)),
	)
}
