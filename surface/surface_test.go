package surface

import (
	"math"
	"testing"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

func mustSurface(t *testing.T, kind Kind) *Surface {
	t.Helper()
	s, err := New(geom.Pt(0, 0, 0), 10, kind)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewRejectsRadius(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN()} {
		if _, err := New(geom.Pt(0, 0, 0), r, FluxMeter); err == nil {
			t.Errorf("radius %v accepted", r)
		}
	}
}

func TestIntersections(t *testing.T) {
	s := mustSurface(t, FluxMeter)

	tests := []struct {
		name string
		seg  geom.Segment
		want []geom.Point
	}{
		{"through center", geom.Seg(geom.Pt(-20, 0, 0), geom.Pt(20, 0, 0)), []geom.Point{geom.Pt(-10, 0, 0), geom.Pt(10, 0, 0)}},
		{"exits once", geom.Seg(geom.Pt(0, 0, 0), geom.Pt(0, 20, 0)), []geom.Point{geom.Pt(0, 10, 0)}},
		{"tangent", geom.Seg(geom.Pt(-5, 10, 0), geom.Pt(5, 10, 0)), []geom.Point{geom.Pt(0, 10, 0)}},
		{"miss", geom.Seg(geom.Pt(-5, 11, 0), geom.Pt(5, 11, 0)), nil},
		{"inside", geom.Seg(geom.Pt(-1, 0, 0), geom.Pt(1, 0, 0)), nil},
		{"line hits beyond segment", geom.Seg(geom.Pt(-30, 0, 0), geom.Pt(-20, 0, 0)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Intersections(tt.seg)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if geom.Distance(got[i], tt.want[i]) > 1e-9 {
					t.Errorf("intersection %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReflectKeepsMotorInside(t *testing.T) {
	s := mustSurface(t, ReflectiveBarrier)

	cur := geom.Pt(14, 0, 0)
	if !s.Reflect(geom.Pt(6, 0, 0), &cur) {
		t.Fatal("expected a reflection")
	}
	if geom.Distance(cur, geom.Pt(6, 0, 0)) > 1e-9 {
		t.Errorf("head-on reflection landed at %v, want (6,0,0)", cur)
	}

	cur = geom.Pt(12, 4, 0)
	s.Reflect(geom.Pt(0, 4, 0), &cur)
	if !s.Contains(cur) {
		t.Errorf("oblique reflection left the sphere at %v", cur)
	}

	cur = geom.Pt(100, 0, 0)
	s.Reflect(geom.Pt(9, 0, 0), &cur)
	if !s.Contains(cur) {
		t.Errorf("long step escaped to %v", cur)
	}

	cur = geom.Pt(2, 0, 0)
	if s.Reflect(geom.Pt(1, 0, 0), &cur) {
		t.Error("step inside the sphere should not reflect")
	}
}

func TestReflectKeepsMotorOutside(t *testing.T) {
	s := mustSurface(t, ReflectiveBarrier)

	cur := geom.Pt(5, 0, 0)
	s.Reflect(geom.Pt(15, 0, 0), &cur)
	if s.Contains(cur) {
		t.Errorf("entry step ended inside at %v", cur)
	}

	cur = geom.Pt(-20, 0, 0)
	if !s.Reflect(geom.Pt(20, 0, 0), &cur) {
		t.Fatal("pass-through step should reflect")
	}
	if s.Contains(cur) {
		t.Errorf("pass-through step ended inside at %v", cur)
	}
}

func TestMeterObservesWithoutMoving(t *testing.T) {
	s := mustSurface(t, FluxMeter)

	cur := geom.Pt(20, 0, 0)
	if s.Interact(geom.Pt(0, 0, 0), &cur) {
		t.Error("meter should not alter motion")
	}
	if cur != geom.Pt(20, 0, 0) {
		t.Errorf("meter moved the motor to %v", cur)
	}
	cur = geom.Pt(0, 0, 0)
	s.Interact(geom.Pt(20, 0, 0), &cur)

	in, out := s.MotorCrossings()
	if in != 1 || out != 1 {
		t.Errorf("crossings in=%d out=%d, want 1 and 1", in, out)
	}
	s.Reset()
	if in, out := s.MotorCrossings(); in != 0 || out != 0 {
		t.Error("Reset did not clear counts")
	}
}

func TestFlux(t *testing.T) {
	s := mustSurface(t, FluxMeter)
	net, err := network.FromSegments([]geom.Segment{
		geom.Seg(geom.Pt(0, 0, 0), geom.Pt(20, 0, 0)),   // out
		geom.Seg(geom.Pt(0, 20, 0), geom.Pt(0, 0, 0)),   // in
		geom.Seg(geom.Pt(-20, 0, 5), geom.Pt(20, 0, 5)), // in and out
		geom.Seg(geom.Pt(50, 50, 50), geom.Pt(60, 60, 60)),
	}, 1)
	if err != nil {
		t.Fatal(err)
	}

	r := s.Flux(net)
	if r.Crossings != 4 || r.Inward != 2 || r.Outward != 2 {
		t.Errorf("reading = %+v", r)
	}
	if math.Abs(r.Net) > 1e-9 {
		t.Errorf("net flux = %v, want 0", r.Net)
	}
	want := 4 / (4 * math.Pi * 100)
	if math.Abs(s.FluxMeter(net)-want) > 1e-12 {
		t.Errorf("FluxMeter = %v, want %v", s.FluxMeter(net), want)
	}
}

func TestVectorAngle(t *testing.T) {
	radial := geom.Seg(geom.Pt(0, 0, 0), geom.Pt(20, 0, 0))
	if a := VectorAngle(radial, geom.Pt(10, 0, 0)); math.Abs(a) > 1e-12 {
		t.Errorf("radial angle = %v, want 0", a)
	}

	s := mustSurface(t, FluxMeter)
	angles := s.CrossingAngles(geom.Seg(geom.Pt(0, -20, 0), geom.Pt(0, 20, 0)))
	if len(angles) != 2 {
		t.Fatalf("got %d angles", len(angles))
	}
	if math.Abs(angles[0]-math.Pi) > 1e-9 || math.Abs(angles[1]) > 1e-9 {
		t.Errorf("angles = %v, want [pi 0]", angles)
	}
}

func TestCrossingAngleRadial(t *testing.T) {
	s := mustSurface(t, FluxMeter)
	// the segment lies on a ray from the center
	angles := s.CrossingAngles(geom.Seg(geom.Pt(3, 4, 1), geom.Pt(30, 40, 10)))
	if len(angles) != 1 {
		t.Fatalf("got %d angles, want 1", len(angles))
	}
	if angles[0] > 1e-12 {
		t.Errorf("radial crossing angle = %v, want 0", angles[0])
	}
}

func TestStop(t *testing.T) {
	barrier := mustSurface(t, ReflectiveBarrier)
	tests := []struct {
		name   string
		seg    geom.Segment
		ok     bool
		inside bool
	}{
		{"leaving", geom.Seg(geom.Pt(0, 0, 0), geom.Pt(20, 0, 0)), true, true},
		{"entering", geom.Seg(geom.Pt(-20, 0, 0), geom.Pt(0, 0, 0)), true, false},
		{"inside only", geom.Seg(geom.Pt(-5, 0, 0), geom.Pt(5, 0, 0)), false, false},
		{"outside only", geom.Seg(geom.Pt(20, 0, 0), geom.Pt(30, 0, 0)), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := barrier.Stop(tt.seg)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if math.Abs(geom.Distance(p, barrier.Center)-barrier.Radius) > 1e-9 {
				t.Errorf("stop %v is not on the sphere", p)
			}
			if barrier.Contains(p) != tt.inside {
				t.Errorf("stop %v inside = %v, want %v", p, barrier.Contains(p), tt.inside)
			}
		})
	}

	meter := mustSurface(t, FluxMeter)
	if _, ok := meter.Stop(geom.Seg(geom.Pt(0, 0, 0), geom.Pt(20, 0, 0))); ok {
		t.Error("a flux meter must not stop a walk")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"barrier": ReflectiveBarrier, "flux_meter": FluxMeter} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("mirror"); err == nil {
		t.Error("unknown kind accepted")
	}
}
