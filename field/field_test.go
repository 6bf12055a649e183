package field

import (
	"testing"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/rng"
)

func TestBuild(t *testing.T) {
	net, err := network.Generate(network.DefaultCharacteristics(), rng.New(8))
	if err != nil {
		t.Fatal(err)
	}
	f := Build(net)
	if len(f) != net.Len() {
		t.Fatalf("len = %d, want %d", len(f), net.Len())
	}
	for i, s := range net.Segments() {
		if f[i].Anchor != s.Start {
			t.Errorf("sample %d anchor %v, want %v", i, f[i].Anchor, s.Start)
		}
		if f[i].Vector != s.Vector() {
			t.Errorf("sample %d vector %v, want %v", i, f[i].Vector, s.Vector())
		}
	}
}

func TestNearest(t *testing.T) {
	f := Field{
		{Anchor: geom.Pt(0, 0, 0), Vector: geom.Pt(1, 0, 0)},
		{Anchor: geom.Pt(2, 0, 0), Vector: geom.Pt(0, 1, 0)},
		{Anchor: geom.Pt(10, 0, 0), Vector: geom.Pt(0, 0, 1)},
	}

	tests := []struct {
		name string
		p    geom.Point
		want geom.Point
	}{
		{"closest to first", geom.Pt(-1, 0, 0), geom.Pt(1, 0, 0)},
		{"tie keeps earliest", geom.Pt(1, 0, 0), geom.Pt(1, 0, 0)},
		{"closest to last", geom.Pt(9, 1, 0), geom.Pt(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Nearest(tt.p, f)
			if !ok {
				t.Fatal("expected a sample")
			}
			if s.Vector != tt.want {
				t.Errorf("Nearest vector = %v, want %v", s.Vector, tt.want)
			}
		})
	}

	if _, ok := Nearest(geom.Pt(0, 0, 0), nil); ok {
		t.Error("empty field should report not ok")
	}
}

func TestMesh(t *testing.T) {
	f := Field{
		{Anchor: geom.Pt(0, 0, 0), Vector: geom.Pt(1, 0, 0)},
		{Anchor: geom.Pt(9, 9, 9), Vector: geom.Pt(0, 1, 0)},
	}
	m := Mesh(f, 10)
	if len(m) != 1000 {
		t.Fatalf("mesh size = %d, want 1000", len(m))
	}
	if m[0].Anchor != geom.Pt(0, 0, 0) || m[0].Vector != geom.Pt(1, 0, 0) {
		t.Errorf("first mesh sample = %+v", m[0])
	}
	last := m[len(m)-1]
	if last.Anchor != geom.Pt(9, 9, 9) || last.Vector != geom.Pt(0, 1, 0) {
		t.Errorf("last mesh sample = %+v", last)
	}

	// Points near (4,4,4) sit more than two steps from both anchors
	var zero int
	for _, s := range m {
		if s.Vector == (geom.Point{}) {
			zero++
		}
	}
	if zero == 0 {
		t.Error("expected mesh points beyond the cutoff to carry the zero vector")
	}

	if Mesh(nil, 10) != nil {
		t.Error("empty field should produce no mesh")
	}
}
