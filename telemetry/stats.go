package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TrialRecord is one transport run, one row of trials.csv.
type TrialRecord struct {
	Trial        int     `csv:"trial"`
	RunID        string  `csv:"run_id"`
	Network      string  `csv:"network"`
	State        string  `csv:"state"`
	Arrived      bool    `csv:"arrived"`
	Elapsed      float64 `csv:"elapsed"`
	Steps        int     `csv:"steps"`
	Binds        int     `csv:"binds"`
	Iterations   int     `csv:"iterations"`
	WalkDistance float64 `csv:"walk_distance"`
	FinalX       float64 `csv:"final_x"`
	FinalY       float64 `csv:"final_y"`
	FinalZ       float64 `csv:"final_z"`
	MeterIn      int     `csv:"meter_in"`
	MeterOut     int     `csv:"meter_out"`
}

// EnsembleStats aggregates a batch of trials.
type EnsembleStats struct {
	Trials      int     `csv:"trials"`
	Arrived     int     `csv:"arrived"`
	ArrivalRate float64 `csv:"arrival_rate"`

	// Delay distribution over arrived trials only
	DelayMean float64 `csv:"delay_mean"`
	DelayStd  float64 `csv:"delay_std"`
	DelayP10  float64 `csv:"delay_p10"`
	DelayP50  float64 `csv:"delay_p50"`
	DelayP90  float64 `csv:"delay_p90"`

	StepsMean    float64 `csv:"steps_mean"`
	BindsMean    float64 `csv:"binds_mean"`
	WalkFraction float64 `csv:"walk_fraction"` // share of elapsed time spent walking
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDelayStats returns the population mean, std and percentiles of
// delays.
func ComputeDelayStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, std, p10, p50, p90
}

// ComputeEnsembleStats summarizes trial records. walkRate converts walked
// distance to time for WalkFraction; zero disables it.
func ComputeEnsembleStats(records []TrialRecord, walkRate float64) EnsembleStats {
	s := EnsembleStats{Trials: len(records)}
	if len(records) == 0 {
		return s
	}

	var delays []float64
	var steps, binds, walkTime, total float64
	for _, r := range records {
		if r.Arrived {
			delays = append(delays, r.Elapsed)
		}
		steps += float64(r.Steps)
		binds += float64(r.Binds)
		total += r.Elapsed
		if walkRate > 0 {
			walkTime += r.WalkDistance / walkRate
		}
	}

	n := float64(len(records))
	s.Arrived = len(delays)
	s.ArrivalRate = float64(s.Arrived) / n
	s.DelayMean, s.DelayStd, s.DelayP10, s.DelayP50, s.DelayP90 = ComputeDelayStats(delays)
	s.StepsMean = steps / n
	s.BindsMean = binds / n
	if total > 0 {
		s.WalkFraction = walkTime / total
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s EnsembleStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("trials", s.Trials),
		slog.Int("arrived", s.Arrived),
		slog.Float64("arrival_rate", s.ArrivalRate),
		slog.Float64("delay_mean", s.DelayMean),
		slog.Float64("delay_std", s.DelayStd),
		slog.Float64("delay_p10", s.DelayP10),
		slog.Float64("delay_p50", s.DelayP50),
		slog.Float64("delay_p90", s.DelayP90),
		slog.Float64("steps_mean", s.StepsMean),
		slog.Float64("binds_mean", s.BindsMean),
		slog.Float64("walk_fraction", s.WalkFraction),
	)
}

// LogStats logs the ensemble stats using slog.
func (s EnsembleStats) LogStats() {
	slog.Info("ensemble",
		"trials", s.Trials,
		"arrived", s.Arrived,
		"arrival_rate", s.ArrivalRate,
		"delay_mean", s.DelayMean,
		"delay_p50", s.DelayP50,
		"delay_p90", s.DelayP90,
		"binds_mean", s.BindsMean,
	)
}
