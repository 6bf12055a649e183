package transport

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/overlap"
	"github.com/pthm-cable/microtubule/surface"
)

// Phase names reported to a Timer.
const (
	PhaseFloat = "float"
	PhaseWalk  = "walk"
)

// Timer receives phase boundaries for profiling. telemetry.PerfCollector
// satisfies it.
type Timer interface {
	StartPhase(phase string)
}

// DistanceMode selects how binding distance to a filament is measured.
type DistanceMode int

const (
	// LineDistance measures to the infinite line through a segment.
	LineDistance DistanceMode = iota
	// SegmentDistance measures to the finite segment.
	SegmentDistance
)

// ParseDistanceMode converts a config name to a DistanceMode.
func ParseDistanceMode(s string) (DistanceMode, error) {
	switch s {
	case "", "line":
		return LineDistance, nil
	case "segment":
		return SegmentDistance, nil
	}
	return 0, errors.Errorf("unknown distance mode %q", s)
}

// Params are the physical and budget parameters of transport.
type Params struct {
	// Diffusivity D; Brownian increments have std dev sqrt(2*D*dt).
	Diffusivity float64
	// BindingRadius is the farthest a filament can be and still bind.
	BindingRadius float64
	// MovementRate is the walking speed along a filament.
	MovementRate float64
	// TimeStep is the duration of one Brownian step.
	TimeStep float64
	// FloatBudget caps Brownian steps in one search for a filament.
	FloatBudget int
	// IterationBudget caps float/walk rounds toward the destination.
	IterationBudget int
	// BindingProbability is the chance an in-range filament is accepted.
	BindingProbability float64
	DistanceMode       DistanceMode
}

// DefaultParams returns the reference transport parameters.
func DefaultParams() Params {
	return Params{
		Diffusivity:        1,
		BindingRadius:      15,
		MovementRate:       1000,
		TimeStep:           1,
		FloatBudget:        200,
		IterationBudget:    100,
		BindingProbability: 1,
		DistanceMode:       LineDistance,
	}
}

// Validate reports parameters that would break the time or budget rules.
func (p Params) Validate() error {
	switch {
	case !(p.Diffusivity >= 0):
		return errors.Errorf("diffusivity must be non-negative, got %v", p.Diffusivity)
	case !(p.BindingRadius >= 0):
		return errors.Errorf("binding radius must be non-negative, got %v", p.BindingRadius)
	case !(p.MovementRate > 0):
		return errors.Errorf("movement rate must be positive, got %v", p.MovementRate)
	case !(p.TimeStep > 0):
		return errors.Errorf("time step must be positive, got %v", p.TimeStep)
	case p.FloatBudget < 0 || p.IterationBudget < 0:
		return errors.Errorf("budgets must be non-negative, got float=%d iterations=%d", p.FloatBudget, p.IterationBudget)
	case !(p.BindingProbability >= 0 && p.BindingProbability <= 1):
		return errors.Errorf("binding probability must be in [0, 1], got %v", p.BindingProbability)
	}
	return nil
}

// Engine moves motors through one network. It draws every random number
// from the source it was built with.
type Engine struct {
	params   Params
	net      *network.Network
	src      rand.Source
	dist     overlap.DistanceFunc
	bind     distuv.Bernoulli
	bounds   *geom.Box
	surfaces []*surface.Surface
	timer    Timer
}

// Option configures an Engine.
type Option func(*Engine)

// WithBounds reflects Brownian motion off the faces of box.
func WithBounds(box geom.Box) Option {
	return func(e *Engine) { e.bounds = &box }
}

// WithSurfaces adds volume surfaces that every Brownian step interacts with.
func WithSurfaces(s ...*surface.Surface) Option {
	return func(e *Engine) { e.surfaces = append(e.surfaces, s...) }
}

// WithTimer reports float and walk phases to t.
func WithTimer(t Timer) Option {
	return func(e *Engine) { e.timer = t }
}

// NewEngine builds an engine over net. net may be nil for pure diffusion.
func NewEngine(params Params, net *network.Network, src rand.Source, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "transport params")
	}
	e := &Engine{
		params: params,
		net:    net,
		src:    src,
		dist:   geom.DistanceToLine,
		bind:   distuv.Bernoulli{P: params.BindingProbability, Src: src},
	}
	if params.DistanceMode == SegmentDistance {
		e.dist = geom.DistanceToSegment
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Params returns the engine parameters.
func (e *Engine) Params() Params { return e.params }

// Network returns the network the engine walks on.
func (e *Engine) Network() *network.Network { return e.net }

// Surfaces returns the surfaces the engine applies.
func (e *Engine) Surfaces() []*surface.Surface { return e.surfaces }

// MeterCrossings sums the motor crossings seen by every flux meter since
// the last ResetMeters.
func (e *Engine) MeterCrossings() (inward, outward int) {
	for _, s := range e.surfaces {
		if s.Kind == surface.FluxMeter {
			in, out := s.MotorCrossings()
			inward += in
			outward += out
		}
	}
	return inward, outward
}

// ResetMeters clears the crossing counts of every surface.
func (e *Engine) ResetMeters() {
	for _, s := range e.surfaces {
		s.Reset()
	}
}

func (e *Engine) phase(name string) {
	if e.timer != nil {
		e.timer.StartPhase(name)
	}
}

// BrownianStep moves m by an independent Gaussian increment on each axis
// with standard deviation sqrt(2*D*dt), then applies the bounding box and
// surfaces. Simulated time advances by dt.
func (e *Engine) BrownianStep(m *Motor, dt float64) {
	if dt < 0 {
		dt = 0
	}
	n := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 * e.params.Diffusivity * dt), Src: e.src}
	last := m.Position
	next := geom.Pt(last.X+n.Rand(), last.Y+n.Rand(), last.Z+n.Rand())

	if e.bounds != nil {
		next, _ = e.bounds.Reflect(next)
	}
	for _, s := range e.surfaces {
		s.Interact(last, &next)
	}

	m.moveTo(next)
	m.advance(dt)
	m.Steps++
}

// FreeFloat takes exactly steps Brownian steps regardless of filaments.
func (e *Engine) FreeFloat(m *Motor, steps int) {
	e.phase(PhaseFloat)
	for i := 0; i < steps; i++ {
		e.BrownianStep(m, e.params.TimeStep)
	}
}

// tryBind looks for a filament within the binding radius of m, skipping the
// tube m just left, and applies the binding probability.
func (e *Engine) tryBind(m *Motor) network.SegmentIndex {
	if e.net == nil || e.net.Len() == 0 {
		return network.NoSegment
	}
	var skip func(network.SegmentIndex) bool
	if m.departed >= 0 {
		skip = func(i network.SegmentIndex) bool { return e.net.TubeOf(i) == m.departed }
	}
	idx, d := overlap.NearestSegmentFunc(m.Position, e.net, e.params.BindingRadius, e.dist, skip)
	if idx == network.NoSegment {
		return network.NoSegment
	}
	// no draw when binding is certain, so the default keeps the stream untouched
	if e.params.BindingProbability < 1 && e.bind.Rand() == 0 {
		slog.Debug("binding rejected", "run_id", m.RunID, "segment", int(idx), "distance", d)
		return network.NoSegment
	}
	return idx
}

// Float2Tube floats m until it comes within the binding radius of a
// filament. The current position is tested before the first step, so a
// motor already beside a filament binds without moving. At most
// FloatBudget steps are taken. The float also stops if the motor drifts
// into its destination. Returns the bound segment and whether binding
// happened; on failure m stays Unbound.
func (e *Engine) Float2Tube(m *Motor) (network.SegmentIndex, bool) {
	e.phase(PhaseFloat)
	defer func() { m.departed = -1 }()

	for step := 0; ; step++ {
		if idx := e.tryBind(m); idx != network.NoSegment {
			m.State = Bound
			m.BoundSegment = idx
			m.Binds++
			slog.Debug("motor bound", "run_id", m.RunID, "segment", int(idx), "steps", step, "elapsed", m.Elapsed)
			return idx, true
		}
		if step >= e.params.FloatBudget || m.InDestination() {
			break
		}
		e.BrownianStep(m, e.params.TimeStep)
	}
	m.State = Unbound
	return network.NoSegment, false
}

// Walk carries m from segment seg to the end of its tube, visiting each
// segment end. Time advances by distance over MovementRate per hop. The
// motor is Unbound afterwards and will not rebind to the same tube on its
// next float. A reflective barrier across the tube ends the walk on the
// motor's side of it.
func (e *Engine) Walk(m *Motor, seg network.SegmentIndex) {
	e.phase(PhaseWalk)
	m.State = Bound
	m.BoundSegment = seg

	tube := e.net.TubeOf(seg)
	last := e.net.LastSegment(tube)
	for i := seg; i <= last; i++ {
		prev := m.Position
		end, blocked := e.barrierStop(prev, e.net.Segment(i).End)
		d := geom.Distance(prev, end)
		for _, s := range e.surfaces {
			if s.Kind == surface.FluxMeter {
				s.Observe(prev, end)
			}
		}
		m.moveTo(end)
		m.advance(d / e.params.MovementRate)
		m.WalkDistance += d
		if blocked {
			slog.Debug("walk blocked by barrier", "run_id", m.RunID, "tube", int(tube), "at", end)
			break
		}
	}

	m.State = Unbound
	m.BoundSegment = network.NoSegment
	m.departed = tube
	slog.Debug("motor unbound", "run_id", m.RunID, "tube", int(tube), "elapsed", m.Elapsed)
}

// barrierStop returns the nearest point where a barrier halts a hop from
// prev to end, or end itself when no barrier is in the way.
func (e *Engine) barrierStop(prev, end geom.Point) (geom.Point, bool) {
	best, blocked := end, false
	bestDist := math.Inf(1)
	for _, s := range e.surfaces {
		p, ok := s.Stop(geom.Seg(prev, end))
		if !ok {
			continue
		}
		if d := geom.Distance(prev, p); d < bestDist {
			best, bestDist, blocked = p, d, true
		}
	}
	return best, blocked
}

// Move2Destination alternates floating and walking until m is in its
// destination or IterationBudget rounds have run. A timed-out motor keeps
// its partial history and elapsed time.
func (e *Engine) Move2Destination(m *Motor) Result {
	iterations := 0
	for ; iterations < e.params.IterationBudget; iterations++ {
		if m.InDestination() {
			break
		}
		if seg, ok := e.Float2Tube(m); ok {
			e.Walk(m, seg)
		}
	}
	e.finish(m)
	r := newResult(m, iterations)
	slog.Debug("transport finished", "result", r)
	return r
}

// Float2Destination moves m by Brownian motion alone until it arrives or
// budget steps have been taken.
func (e *Engine) Float2Destination(m *Motor, budget int) Result {
	e.phase(PhaseFloat)
	steps := 0
	for ; steps < budget && !m.InDestination(); steps++ {
		e.BrownianStep(m, e.params.TimeStep)
	}
	e.finish(m)
	return newResult(m, steps)
}

func (e *Engine) finish(m *Motor) {
	if m.InDestination() {
		m.State = Arrived
	} else {
		m.State = TimedOut
	}
}
