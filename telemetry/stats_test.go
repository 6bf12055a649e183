package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDelayStats(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDelayStats([]float64{4, 2, 6, 8})
	if math.Abs(mean-5) > 1e-12 {
		t.Errorf("mean = %v, want 5", mean)
	}
	if math.Abs(std-math.Sqrt(5)) > 1e-12 {
		t.Errorf("std = %v, want sqrt(5)", std)
	}
	if math.Abs(p50-5) > 1e-12 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p10 > p50 || p50 > p90 {
		t.Errorf("percentiles out of order: %v %v %v", p10, p50, p90)
	}

	if m, s, _, _, _ := ComputeDelayStats(nil); m != 0 || s != 0 {
		t.Error("empty input should give zeros")
	}
}

func TestComputeEnsembleStats(t *testing.T) {
	records := []TrialRecord{
		{Arrived: true, Elapsed: 1, Steps: 10, Binds: 1, WalkDistance: 500},
		{Arrived: true, Elapsed: 3, Steps: 30, Binds: 3, WalkDistance: 500},
		{Arrived: false, Elapsed: 100, Steps: 200, Binds: 0},
		{Arrived: false, Elapsed: 100, Steps: 200, Binds: 0},
	}
	s := ComputeEnsembleStats(records, 1000)

	if s.Trials != 4 || s.Arrived != 2 {
		t.Errorf("trials=%d arrived=%d", s.Trials, s.Arrived)
	}
	if math.Abs(s.ArrivalRate-0.5) > 1e-12 {
		t.Errorf("arrival rate = %v", s.ArrivalRate)
	}
	if math.Abs(s.DelayMean-2) > 1e-12 {
		t.Errorf("delay mean = %v, want 2 (arrived only)", s.DelayMean)
	}
	if math.Abs(s.BindsMean-1) > 1e-12 || math.Abs(s.StepsMean-110) > 1e-12 {
		t.Errorf("binds mean %v steps mean %v", s.BindsMean, s.StepsMean)
	}
	if math.Abs(s.WalkFraction-1.0/204) > 1e-12 {
		t.Errorf("walk fraction = %v", s.WalkFraction)
	}

	if empty := ComputeEnsembleStats(nil, 1000); empty.Trials != 0 || empty.ArrivalRate != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}
