package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/microtubule/config"
	"github.com/pthm-cable/microtubule/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector(cfg)

	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}

	got := pv.ExtractFromConfig(cfg)
	for i := range raw {
		if got[i] != raw[i] {
			t.Errorf("%s: extracted %v, default %v", pv.Specs[i].Name, got[i], raw[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector(cfg)
	pv.ApplyToConfig(cfg, []float64{1e6, -5, 20, 30})

	if cfg.Network.PersistenceLength != pv.Specs[0].Max {
		t.Errorf("persistence length = %v, want clamped to %v", cfg.Network.PersistenceLength, pv.Specs[0].Max)
	}
	if cfg.Network.MeanTubeLength != pv.Specs[1].Min {
		t.Errorf("tube length = %v, want clamped to %v", cfg.Network.MeanTubeLength, pv.Specs[1].Min)
	}
	if cfg.Network.Density != 20 || cfg.Motor.BindingRadius != 30 {
		t.Errorf("density=%v radius=%v", cfg.Network.Density, cfg.Motor.BindingRadius)
	}
}

func TestComputeFitness(t *testing.T) {
	fe := &FitnessEvaluator{target: 10}
	tests := []struct {
		name  string
		stats telemetry.EnsembleStats
		want  float64
	}{
		{"on target", telemetry.EnsembleStats{Trials: 4, Arrived: 4, ArrivalRate: 1, DelayMean: 10}, 0},
		{"20% slow", telemetry.EnsembleStats{Trials: 4, Arrived: 4, ArrivalRate: 1, DelayMean: 12}, 0.04},
		{"half arrived", telemetry.EnsembleStats{Trials: 4, Arrived: 2, ArrivalRate: 0.5, DelayMean: 10}, 5},
		{"none arrived", telemetry.EnsembleStats{Trials: 4}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fe.computeFitness(tt.stats); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("fitness = %v, want %v", got, tt.want)
			}
		})
	}
	if !math.IsInf(fe.computeFitness(telemetry.EnsembleStats{}), 1) {
		t.Error("no trials should give +Inf")
	}
}

func TestEvaluateRecordsStats(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Transport.FloatBudget = 10
	cfg.Transport.IterationBudget = 3
	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, []int64{1, 2}, 2, 10, cfg)

	f := fe.Evaluate(pv.DefaultVector())
	if math.IsNaN(f) {
		t.Fatal("fitness is NaN")
	}
	if got := fe.LastStats().Trials; got != 4 {
		t.Errorf("pooled trials = %d, want 4", got)
	}
}
