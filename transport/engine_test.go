package transport

import (
	"math"
	"testing"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/rng"
	"github.com/pthm-cable/microtubule/surface"
)

// straightTube returns segs segments of length step running from start
// along dir.
func straightTube(start, dir geom.Point, step float64, segs int) []geom.Segment {
	out := make([]geom.Segment, segs)
	p := start
	for i := range out {
		next := geom.Pt(p.X+dir.X*step, p.Y+dir.Y*step, p.Z+dir.Z*step)
		out[i] = geom.Seg(p, next)
		p = next
	}
	return out
}

func mustNetwork(t *testing.T, segPerTube int, tubes ...[]geom.Segment) *network.Network {
	t.Helper()
	var segs []geom.Segment
	for _, tube := range tubes {
		segs = append(segs, tube...)
	}
	n, err := network.FromSegments(segs, segPerTube)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func mustEngine(t *testing.T, p Params, net *network.Network, seed int64, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(p, net, rng.New(seed), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func box(x0, y0, z0, x1, y1, z1 float64) *geom.Box {
	b := geom.NewBox(geom.Pt(x0, y0, z0), geom.Pt(x1, y1, z1))
	return &b
}

func TestInDestination(t *testing.T) {
	dest := box(1000, 1000, 1000, 2000, 2000, 2000)
	m := NewMotor(geom.Pt(0, 0, 0), dest)

	tests := []struct {
		name string
		p    geom.Point
		want bool
	}{
		{"origin", geom.Pt(0, 0, 0), false},
		{"below lower y only", geom.Pt(1500, 500, 1500), false},
		{"below lower z only", geom.Pt(1500, 1500, 500), false},
		{"above upper x", geom.Pt(2500, 1500, 1500), false},
		{"inside", geom.Pt(1500, 1500, 1500), true},
		{"on lower corner", geom.Pt(1000, 1000, 1000), true},
		{"on upper corner", geom.Pt(2000, 2000, 2000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.Position = tt.p
			if got := m.InDestination(); got != tt.want {
				t.Errorf("InDestination at %v = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	if NewMotor(geom.Pt(0, 0, 0), nil).InDestination() {
		t.Error("motor without destination reported arrival")
	}
}

func TestFloat2TubeBindsWithoutStepping(t *testing.T) {
	tube := straightTube(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), 20, 5)
	net := mustNetwork(t, 5, tube)
	e := mustEngine(t, DefaultParams(), net, 1)

	m := NewMotor(tube[0].Start, nil)
	seg, ok := e.Float2Tube(m)
	if !ok || seg != 0 {
		t.Fatalf("Float2Tube = %d, %v; want 0, true", seg, ok)
	}
	if m.Steps != 0 || len(m.History) != 1 || m.Elapsed != 0 {
		t.Errorf("binding consumed steps=%d history=%d elapsed=%v", m.Steps, len(m.History), m.Elapsed)
	}
	if m.State != Bound || m.BoundSegment != 0 || m.Binds != 1 {
		t.Errorf("motor state %v segment %d binds %d", m.State, m.BoundSegment, m.Binds)
	}
}

func TestFloat2TubeExhaustsBudget(t *testing.T) {
	tube := straightTube(geom.Pt(0, 500, 0), geom.Pt(1, 0, 0), 20, 5)
	net := mustNetwork(t, 5, tube)
	p := DefaultParams()
	p.FloatBudget = 50
	e := mustEngine(t, p, net, 2)

	m := NewMotor(geom.Pt(0, 0, 0), nil)
	if _, ok := e.Float2Tube(m); ok {
		t.Fatal("motor bound to a filament 500 away")
	}
	if m.Steps != 50 || len(m.History) != 51 {
		t.Errorf("steps=%d history=%d, want 50 and 51", m.Steps, len(m.History))
	}
	if m.State != Unbound {
		t.Errorf("state = %v, want unbound", m.State)
	}
	if math.Abs(m.Elapsed-50*p.TimeStep) > 1e-9 {
		t.Errorf("elapsed = %v, want %v", m.Elapsed, 50*p.TimeStep)
	}
}

func TestWalk(t *testing.T) {
	tube := straightTube(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), 10, 4)
	net := mustNetwork(t, 4, tube)
	e := mustEngine(t, DefaultParams(), net, 3)

	m := NewMotor(geom.Pt(10, 0, 0), nil)
	e.Walk(m, 1)

	if m.Position != geom.Pt(40, 0, 0) {
		t.Errorf("walk ended at %v, want (40,0,0)", m.Position)
	}
	if len(m.History) != 4 {
		t.Errorf("history has %d points, want 4", len(m.History))
	}
	if math.Abs(m.Elapsed-0.03) > 1e-12 {
		t.Errorf("elapsed = %v, want 0.03", m.Elapsed)
	}
	if m.State != Unbound || m.BoundSegment != network.NoSegment {
		t.Errorf("after walk state=%v segment=%d", m.State, m.BoundSegment)
	}

	// the tube just walked is excluded from the next bind
	if _, ok := e.Float2Tube(m); ok && m.BoundSegment >= 0 && net.TubeOf(m.BoundSegment) == 0 {
		t.Error("motor rebound to the tube it just left")
	}
}

func TestMove2DestinationHopsTubes(t *testing.T) {
	first := straightTube(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), 10, 2)
	second := []geom.Segment{
		geom.Seg(geom.Pt(20, 5, 0), geom.Pt(20, 25, 0)),
		geom.Seg(geom.Pt(20, 25, 0), geom.Pt(20, 45, 0)),
	}
	net := mustNetwork(t, 2, first, second)
	e := mustEngine(t, DefaultParams(), net, 4)

	m := NewMotor(geom.Pt(0, 0, 0), box(15, 40, -5, 25, 50, 5))
	r := e.Move2Destination(m)

	if r.State != Arrived {
		t.Fatalf("state = %v, want arrived", r.State)
	}
	if r.Binds != 2 || r.Steps != 0 {
		t.Errorf("binds=%d steps=%d, want 2 and 0", r.Binds, r.Steps)
	}
	if math.Abs(r.Elapsed-0.065) > 1e-12 {
		t.Errorf("elapsed = %v, want 0.065", r.Elapsed)
	}
	if r.Final() != geom.Pt(20, 45, 0) {
		t.Errorf("final position %v", r.Final())
	}
	if r.RunID == "" || r.RunID != m.RunID {
		t.Errorf("run id %q vs motor %q", r.RunID, m.RunID)
	}
}

func TestMove2DestinationTimesOut(t *testing.T) {
	p := DefaultParams()
	p.FloatBudget = 5
	p.IterationBudget = 3
	e := mustEngine(t, p, nil, 5)

	m := NewMotor(geom.Pt(0, 0, 0), box(1000, 1000, 1000, 2000, 2000, 2000))
	r := e.Move2Destination(m)

	if r.State != TimedOut {
		t.Fatalf("state = %v, want timed out", r.State)
	}
	if r.Steps != 15 || len(r.History) != 16 || r.Iterations != 3 {
		t.Errorf("steps=%d history=%d iterations=%d", r.Steps, len(r.History), r.Iterations)
	}
	if math.Abs(r.Elapsed-15*p.TimeStep) > 1e-9 {
		t.Errorf("elapsed = %v", r.Elapsed)
	}
}

// TestElapsedNonDecreasing runs a full transport on a generated network and
// checks that time only accumulates from non-negative float and walk terms.
func TestElapsedNonDecreasing(t *testing.T) {
	net, err := network.Generate(network.DefaultCharacteristics(), rng.New(6))
	if err != nil {
		t.Fatal(err)
	}
	p := DefaultParams()
	p.IterationBudget = 20
	e := mustEngine(t, p, net, 7)

	m := NewMotor(geom.Pt(0, 0, 0), box(1000, 1000, 1000, 2000, 2000, 2000))
	prev := m.Elapsed
	for i := 0; i < p.IterationBudget; i++ {
		seg, ok := e.Float2Tube(m)
		if m.Elapsed < prev {
			t.Fatalf("float moved time backwards: %v -> %v", prev, m.Elapsed)
		}
		prev = m.Elapsed
		if ok {
			e.Walk(m, seg)
			if m.Elapsed < prev {
				t.Fatalf("walk moved time backwards: %v -> %v", prev, m.Elapsed)
			}
			prev = m.Elapsed
		}
	}

	want := float64(m.Steps)*p.TimeStep + m.WalkDistance/p.MovementRate
	if math.Abs(m.Elapsed-want) > 1e-6 {
		t.Errorf("elapsed %v does not match steps and walk distance (%v)", m.Elapsed, want)
	}
}

func TestTransportReproducible(t *testing.T) {
	run := func() Result {
		net, err := network.Generate(network.DefaultCharacteristics(), rng.New(9))
		if err != nil {
			t.Fatal(err)
		}
		p := DefaultParams()
		p.IterationBudget = 10
		p.BindingProbability = 0.5
		e := mustEngine(t, p, net, 10)
		return e.Move2Destination(NewMotor(geom.Pt(0, 0, 0), nil))
	}
	a, b := run(), run()
	if a.Elapsed != b.Elapsed || len(a.History) != len(b.History) || a.Final() != b.Final() {
		t.Errorf("same seed gave different runs: %v vs %v", a.Elapsed, b.Elapsed)
	}
}

func TestBindingProbabilityZero(t *testing.T) {
	tube := straightTube(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), 20, 5)
	net := mustNetwork(t, 5, tube)
	p := DefaultParams()
	p.BindingProbability = 0
	p.FloatBudget = 10
	e := mustEngine(t, p, net, 11)

	m := NewMotor(geom.Pt(0, 0, 0), nil)
	if _, ok := e.Float2Tube(m); ok {
		t.Error("motor bound with zero binding probability")
	}
}

func TestSegmentDistanceMode(t *testing.T) {
	tube := straightTube(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), 10, 1)
	net := mustNetwork(t, 1, tube)
	start := geom.Pt(100, 0, 0) // on the line, 90 past the segment

	p := DefaultParams()
	p.FloatBudget = 0
	if _, ok := mustEngine(t, p, net, 12).Float2Tube(NewMotor(start, nil)); !ok {
		t.Error("line distance should bind on the line extension")
	}
	p.DistanceMode = SegmentDistance
	if _, ok := mustEngine(t, p, net, 12).Float2Tube(NewMotor(start, nil)); ok {
		t.Error("segment distance should not bind 90 past the segment")
	}
}

func TestBrownianStepSpread(t *testing.T) {
	p := DefaultParams()
	p.TimeStep = 0.5
	e := mustEngine(t, p, nil, 13)

	m := NewMotor(geom.Pt(0, 0, 0), nil)
	const n = 20000
	e.FreeFloat(m, n)

	var sumSq float64
	for i := 1; i < len(m.History); i++ {
		dx := m.History[i].X - m.History[i-1].X
		sumSq += dx * dx
	}
	variance := sumSq / n // 2*D*dt = 1
	if math.Abs(variance-1) > 0.05 {
		t.Errorf("per-axis step variance = %v, want about 1", variance)
	}
	if math.Abs(m.Elapsed-n*0.5) > 1e-6 {
		t.Errorf("elapsed = %v", m.Elapsed)
	}
}

func TestBoundsReflect(t *testing.T) {
	b := geom.NewBox(geom.Pt(-3, -3, -3), geom.Pt(3, 3, 3))
	e := mustEngine(t, DefaultParams(), nil, 14, WithBounds(b))

	m := NewMotor(geom.Pt(0, 0, 0), nil)
	e.FreeFloat(m, 2000)
	for i, pt := range m.History {
		if !b.Contains(pt) {
			t.Fatalf("position %d escaped the bounding box: %v", i, pt)
		}
	}
}

func TestBarrierConfinesMotor(t *testing.T) {
	barrier, err := surface.New(geom.Pt(0, 0, 0), 5, surface.ReflectiveBarrier)
	if err != nil {
		t.Fatal(err)
	}
	meter, err := surface.New(geom.Pt(0, 0, 0), 2, surface.FluxMeter)
	if err != nil {
		t.Fatal(err)
	}
	e := mustEngine(t, DefaultParams(), nil, 16, WithSurfaces(barrier, meter))

	m := NewMotor(geom.Pt(0, 0, 0), nil)
	e.FreeFloat(m, 2000)
	for i, pt := range m.History {
		if !barrier.Contains(pt) {
			t.Fatalf("position %d escaped the barrier: %v", i, pt)
		}
	}
	in, out := meter.MotorCrossings()
	if out == 0 || in == 0 {
		t.Errorf("meter saw in=%d out=%d crossings in 2000 steps", in, out)
	}
}

func TestWalkStopsAtBarrier(t *testing.T) {
	barrier, err := surface.New(geom.Pt(0, 0, 0), 25, surface.ReflectiveBarrier)
	if err != nil {
		t.Fatal(err)
	}
	tube := straightTube(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), 10, 4)
	e := mustEngine(t, DefaultParams(), mustNetwork(t, 4, tube), 3, WithSurfaces(barrier))

	m := NewMotor(geom.Pt(0, 0, 0), nil)
	e.Walk(m, 0)

	if !barrier.Contains(m.Position) {
		t.Errorf("walk carried motor through the barrier to %v", m.Position)
	}
	if math.Abs(m.Position.X-25) > 1e-9 {
		t.Errorf("walk stopped at %v, want x=25", m.Position)
	}
	if len(m.History) != 4 {
		t.Errorf("history has %d points, want 4", len(m.History))
	}
	if math.Abs(m.WalkDistance-25) > 1e-9 || math.Abs(m.Elapsed-0.025) > 1e-12 {
		t.Errorf("walk distance = %v, elapsed = %v", m.WalkDistance, m.Elapsed)
	}
	if m.State != Unbound {
		t.Errorf("state = %v, want unbound", m.State)
	}
}

func TestFloat2Destination(t *testing.T) {
	e := mustEngine(t, DefaultParams(), nil, 15)

	m := NewMotor(geom.Pt(0, 0, 0), box(-1, -1, -1, 1, 1, 1))
	if r := e.Float2Destination(m, 100); r.State != Arrived || r.Steps != 0 {
		t.Errorf("start inside destination: state=%v steps=%d", r.State, r.Steps)
	}

	m = NewMotor(geom.Pt(0, 0, 0), box(1e6, 1e6, 1e6, 2e6, 2e6, 2e6))
	if r := e.Float2Destination(m, 100); r.State != TimedOut || r.Steps != 100 {
		t.Errorf("unreachable destination: state=%v steps=%d", r.State, r.Steps)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Params)
	}{
		{"zero time step", func(p *Params) { p.TimeStep = 0 }},
		{"zero rate", func(p *Params) { p.MovementRate = 0 }},
		{"negative diffusivity", func(p *Params) { p.Diffusivity = -1 }},
		{"probability above one", func(p *Params) { p.BindingProbability = 1.5 }},
		{"negative budget", func(p *Params) { p.FloatBudget = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			if _, err := NewEngine(p, nil, rng.New(1)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
