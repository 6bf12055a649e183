// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/surface"
	"github.com/pthm-cable/microtubule/transport"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulator configuration parameters.
type Config struct {
	Network     NetworkConfig   `yaml:"network"`
	Motor       MotorConfig     `yaml:"motor"`
	Transport   TransportConfig `yaml:"transport"`
	Destination BoxConfig       `yaml:"destination"`
	Bounds      BoundsConfig    `yaml:"bounds"`
	Surfaces    []SurfaceConfig `yaml:"surfaces"`
	Sweep       SweepConfig     `yaml:"sweep"`
	Ensemble    EnsembleConfig  `yaml:"ensemble"`
	Export      ExportConfig    `yaml:"export"`
	Calibrate   CalibrateConfig `yaml:"calibrate"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a point in config files.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Point converts v to a geometry point.
func (v Vec3) Point() geom.Point { return geom.Pt(v.X, v.Y, v.Z) }

// BoxConfig is an axis-aligned box given by two opposite corners.
type BoxConfig struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// Box converts b to a normalized geometry box.
func (b BoxConfig) Box() geom.Box { return geom.NewBox(b.Min.Point(), b.Max.Point()) }

// NetworkConfig holds filament network generation parameters.
type NetworkConfig struct {
	Volume            float64 `yaml:"volume"`
	MeanTubeLength    float64 `yaml:"mean_tube_length"`
	IntraAngle        float64 `yaml:"intra_angle"` // degrees, informational
	InterAngle        float64 `yaml:"inter_angle"` // degrees, informational
	Density           float64 `yaml:"density"`
	PersistenceLength float64 `yaml:"persistence_length"`
	SegmentsPerTube   int     `yaml:"segments_per_tube"`
	EntropyBins       int     `yaml:"entropy_bins"`
	EntropyRange      string  `yaml:"entropy_range"` // observed | circle
}

// MotorConfig holds per-motor physical parameters.
type MotorConfig struct {
	Start              Vec3    `yaml:"start"`
	Diffusivity        float64 `yaml:"diffusivity"`
	BindingRadius      float64 `yaml:"binding_radius"`
	MovementRate       float64 `yaml:"movement_rate"` // nm per second along a filament
	BindingProbability float64 `yaml:"binding_probability"`
	DistanceMode       string  `yaml:"distance_mode"` // line | segment
}

// TransportConfig holds time stepping and budgets.
type TransportConfig struct {
	TimeStep        float64 `yaml:"time_step"`
	FloatBudget     int     `yaml:"float_budget"`
	IterationBudget int     `yaml:"iteration_budget"`
}

// BoundsConfig confines Brownian motion to a box when enabled.
type BoundsConfig struct {
	Enabled   bool `yaml:"enabled"`
	BoxConfig `yaml:",inline"`
}

// SurfaceConfig places a sphere in the volume.
type SurfaceConfig struct {
	Center Vec3    `yaml:"center"`
	Radius float64 `yaml:"radius"`
	Kind   string  `yaml:"kind"` // reflective_barrier | flux_meter
}

// SweepConfig holds persistence length sweep parameters.
type SweepConfig struct {
	MinPersistence float64 `yaml:"min_persistence"`
	MaxPersistence float64 `yaml:"max_persistence"`
	Points         int     `yaml:"points"`
	ExportTubes    bool    `yaml:"export_tubes"` // write tubes at each sweep point
}

// EnsembleConfig holds repeated trial parameters.
type EnsembleConfig struct {
	Trials int `yaml:"trials"`
}

// ExportConfig selects the export format.
type ExportConfig struct {
	Format    string `yaml:"format"` // mathematica | csv | geojson
	MeshSteps int    `yaml:"mesh_steps"`
}

// CalibrateConfig holds CMA-ES calibration parameters.
type CalibrateConfig struct {
	TargetDelay float64 `yaml:"target_delay"`
	Trials      int     `yaml:"trials"`
	MaxEvals    int     `yaml:"max_evals"`
	Sigma       float64 `yaml:"sigma"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int  `yaml:"perf_window"` // runs averaged by the perf collector
	LogTrials  bool `yaml:"log_trials"`  // log every trial at info level
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	SegmentLength float64
	NumSegments   int
	NumTubes      int
	SurfaceKinds  []surface.Kind
	DistanceMode  transport.DistanceMode
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	ch := c.Characteristics()
	c.Derived.SegmentLength = ch.SegmentLength()
	c.Derived.NumSegments = ch.NumSegments()
	c.Derived.NumTubes = ch.NumTubes()

	mode, err := transport.ParseDistanceMode(c.Motor.DistanceMode)
	if err != nil {
		return fmt.Errorf("motor.distance_mode: %w", err)
	}
	c.Derived.DistanceMode = mode

	c.Derived.SurfaceKinds = c.Derived.SurfaceKinds[:0]
	for i, s := range c.Surfaces {
		kind, err := surface.ParseKind(s.Kind)
		if err != nil {
			return fmt.Errorf("surfaces[%d].kind: %w", i, err)
		}
		c.Derived.SurfaceKinds = append(c.Derived.SurfaceKinds, kind)
	}

	switch c.Network.EntropyRange {
	case "", "observed", "circle":
	default:
		return fmt.Errorf("network.entropy_range: unknown value %q", c.Network.EntropyRange)
	}
	return nil
}

// Characteristics builds network characteristics from the network section.
func (c *Config) Characteristics() *network.Characteristics {
	ch := network.DefaultCharacteristics()
	ch.SetVolume(c.Network.Volume)
	ch.SetMeanTubeLength(c.Network.MeanTubeLength)
	ch.SetIntraAngle(c.Network.IntraAngle)
	ch.SetInterAngle(c.Network.InterAngle)
	ch.SetDensity(c.Network.Density)
	ch.SetPersistenceLength(c.Network.PersistenceLength)
	ch.SetSegmentsPerTube(c.Network.SegmentsPerTube)
	return ch
}

// GenerateOptions returns the generator options for the network section.
func (c *Config) GenerateOptions() []network.Option {
	var opts []network.Option
	if c.Network.EntropyBins > 0 {
		opts = append(opts, network.WithEntropyBins(c.Network.EntropyBins))
	}
	if c.Network.EntropyRange == "circle" {
		opts = append(opts, network.WithCircleEntropy())
	}
	return opts
}

// TransportParams builds transport parameters from the motor and transport sections.
func (c *Config) TransportParams() transport.Params {
	return transport.Params{
		Diffusivity:        c.Motor.Diffusivity,
		BindingRadius:      c.Motor.BindingRadius,
		MovementRate:       c.Motor.MovementRate,
		TimeStep:           c.Transport.TimeStep,
		FloatBudget:        c.Transport.FloatBudget,
		IterationBudget:    c.Transport.IterationBudget,
		BindingProbability: c.Motor.BindingProbability,
		DistanceMode:       c.Derived.DistanceMode,
	}
}

// BuildSurfaces creates the configured surfaces. Each call returns fresh
// surfaces with zeroed crossing counters.
func (c *Config) BuildSurfaces() ([]*surface.Surface, error) {
	out := make([]*surface.Surface, 0, len(c.Surfaces))
	for i, sc := range c.Surfaces {
		s, err := surface.New(sc.Center.Point(), sc.Radius, c.Derived.SurfaceKinds[i])
		if err != nil {
			return nil, fmt.Errorf("surfaces[%d]: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// EngineOptions returns the transport engine options for bounds and surfaces.
func (c *Config) EngineOptions() ([]transport.Option, error) {
	var opts []transport.Option
	if c.Bounds.Enabled {
		opts = append(opts, transport.WithBounds(c.Bounds.Box()))
	}
	surfaces, err := c.BuildSurfaces()
	if err != nil {
		return nil, err
	}
	if len(surfaces) > 0 {
		opts = append(opts, transport.WithSurfaces(surfaces...))
	}
	return opts, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
