package transport

import (
	"log/slog"

	"github.com/pthm-cable/microtubule/geom"
)

// Result is what a transport run reports: the propagation time estimate
// and the trajectory that produced it.
type Result struct {
	RunID        string
	State        State
	Elapsed      float64
	Steps        int
	Binds        int
	Iterations   int
	WalkDistance float64
	History      []geom.Point
}

func newResult(m *Motor, iterations int) Result {
	return Result{
		RunID:        m.RunID,
		State:        m.State,
		Elapsed:      m.Elapsed,
		Steps:        m.Steps,
		Binds:        m.Binds,
		Iterations:   iterations,
		WalkDistance: m.WalkDistance,
		History:      m.History,
	}
}

// Arrived reports whether the motor reached its destination.
func (r Result) Arrived() bool { return r.State == Arrived }

// Final returns the last position of the trajectory.
func (r Result) Final() geom.Point {
	if len(r.History) == 0 {
		return geom.Point{}
	}
	return r.History[len(r.History)-1]
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.String("state", r.State.String()),
		slog.Float64("elapsed", r.Elapsed),
		slog.Int("steps", r.Steps),
		slog.Int("binds", r.Binds),
		slog.Int("iterations", r.Iterations),
		slog.Float64("walk_distance", r.WalkDistance),
		slog.Int("positions", len(r.History)),
	)
}
