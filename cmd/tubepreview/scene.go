package main

import (
	"math"

	"github.com/pthm-cable/microtubule/config"
	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/overlap"
	"github.com/pthm-cable/microtubule/rng"
	"github.com/pthm-cable/microtubule/transport"
)

// PreviewParams holds the slider-controlled parameters.
type PreviewParams struct {
	PersistenceLength float32
	SegmentsPerTube   int
	Density           float32
	BindingRadius     float32
	Seed              uint32
}

func defaultParams(cfg *config.Config) PreviewParams {
	return PreviewParams{
		PersistenceLength: float32(cfg.Network.PersistenceLength),
		SegmentsPerTube:   cfg.Network.SegmentsPerTube,
		Density:           float32(cfg.Network.Density),
		BindingRadius:     float32(cfg.Motor.BindingRadius),
		Seed:              12345,
	}
}

// apply writes p into a copy of cfg.
func (p PreviewParams) apply(cfg *config.Config) *config.Config {
	c := *cfg
	c.Network.PersistenceLength = float64(p.PersistenceLength)
	c.Network.SegmentsPerTube = p.SegmentsPerTube
	c.Network.Density = float64(p.Density)
	c.Motor.BindingRadius = float64(p.BindingRadius)
	return &c
}

// scene is everything drawn for one parameter set.
type scene struct {
	cfg        *config.Config
	net        *network.Network
	overlaps   []geom.Point
	trajectory []geom.Point
	result     *transport.Result
	center     geom.Point
	scale      float64 // world units per preview unit
	err        error
}

// buildScene generates the network and its tube crossings.
func buildScene(base *config.Config, p PreviewParams) *scene {
	s := &scene{cfg: p.apply(base), scale: 1}
	src := rng.New(int64(p.Seed))
	s.net, s.err = network.Generate(s.cfg.Characteristics(), src, s.cfg.GenerateOptions()...)
	if s.err != nil {
		return s
	}
	s.overlaps = overlap.Points(overlap.TubeCrossings(s.net, 1e-6))

	b := s.net.Bounds()
	s.center = geom.Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2, (b.Min.Z+b.Max.Z)/2)
	size := b.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	if extent > 0 {
		s.scale = extent / 10
	}
	return s
}

// runTransport moves one motor from the configured start. The seed is
// offset so the trajectory does not replay the network's random draws.
func (s *scene) runTransport(p PreviewParams) {
	if s.net == nil {
		return
	}
	opts, err := s.cfg.EngineOptions()
	if err != nil {
		s.err = err
		return
	}
	engine, err := transport.NewEngine(s.cfg.TransportParams(), s.net, rng.New(int64(p.Seed)+1), opts...)
	if err != nil {
		s.err = err
		return
	}
	dest := s.cfg.Destination.Box()
	r := engine.Move2Destination(transport.NewMotor(s.cfg.Motor.Start.Point(), &dest))
	s.result = &r
	s.trajectory = r.History
}

// toView maps a world point into preview coordinates centered on the network.
func (s *scene) toView(p geom.Point) (x, y, z float32) {
	return float32((p.X - s.center.X) / s.scale),
		float32((p.Y - s.center.Y) / s.scale),
		float32((p.Z - s.center.Z) / s.scale)
}
