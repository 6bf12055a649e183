package main

import (
	"github.com/pthm-cable/microtubule/config"
)

// ParamSpec defines a single calibrated parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all calibrated parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibrated parameters.
// Defaults are taken from base so calibration starts where the user is.
func NewParamVector(base *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "persistence_length", Path: "network.persistence_length", Min: 5, Max: 2000, Default: base.Network.PersistenceLength},
			{Name: "mean_tube_length", Path: "network.mean_tube_length", Min: 10, Max: 500, Default: base.Network.MeanTubeLength},
			{Name: "density", Path: "network.density", Min: 1, Max: 40, Default: base.Network.Density},
			{Name: "binding_radius", Path: "motor.binding_radius", Min: 1, Max: 60, Default: base.Motor.BindingRadius},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp restricts values to their valid ranges.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Network.PersistenceLength = clamped[0]
	cfg.Network.MeanTubeLength = clamped[1]
	cfg.Network.Density = clamped[2]
	cfg.Motor.BindingRadius = clamped[3]
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Network.PersistenceLength,
		cfg.Network.MeanTubeLength,
		cfg.Network.Density,
		cfg.Motor.BindingRadius,
	}
}
