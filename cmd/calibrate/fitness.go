package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/microtubule/config"
	"github.com/pthm-cable/microtubule/ensemble"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/rng"
	"github.com/pthm-cable/microtubule/telemetry"
	"github.com/pthm-cable/microtubule/transport"
)

// missPenalty is added per unit of non-arrival so that parameters which
// rarely reach the destination never beat ones that do.
const missPenalty = 10.0

// FitnessEvaluator runs transport ensembles and scores how close their
// mean delay is to the target.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	trials     int
	target     float64
	baseConfig *config.Config

	mu        sync.Mutex
	lastStats telemetry.EnsembleStats // pooled stats from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, trials int, target float64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		trials:     trials,
		target:     target,
		baseConfig: baseCfg,
	}
}

// LastStats returns the pooled ensemble stats of the most recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.EnsembleStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// seedResult holds the runs from one seed.
type seedResult struct {
	records []telemetry.TrialRecord
	err     error
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Each seed builds its own network and random stream, so seeds run in
// parallel without sharing state.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			records, err := fe.runSeed(cfg, s)
			results[idx] = seedResult{records: records, err: err}
		}(i, seed)
	}
	wg.Wait()

	var pooled []telemetry.TrialRecord
	for _, r := range results {
		if r.err != nil {
			slog.Debug("seed failed", "error", r.err)
			continue
		}
		pooled = append(pooled, r.records...)
	}
	stats := telemetry.ComputeEnsembleStats(pooled, cfg.Motor.MovementRate)

	fe.mu.Lock()
	fe.lastStats = stats
	fe.mu.Unlock()

	return fe.computeFitness(stats)
}

// computeFitness is the squared relative error of the mean delay plus a
// penalty for runs that never arrived.
func (fe *FitnessEvaluator) computeFitness(s telemetry.EnsembleStats) float64 {
	if s.Trials == 0 {
		return math.Inf(1)
	}
	miss := missPenalty * (1 - s.ArrivalRate)
	if s.Arrived == 0 {
		return missPenalty + miss
	}
	rel := (s.DelayMean - fe.target) / fe.target
	return rel*rel + miss
}

func (fe *FitnessEvaluator) runSeed(cfg *config.Config, seed int64) ([]telemetry.TrialRecord, error) {
	src := rng.New(seed)
	net, err := network.Generate(cfg.Characteristics(), src, cfg.GenerateOptions()...)
	if err != nil {
		return nil, err
	}
	// Surfaces hold crossing counters, so every seed builds its own.
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	engine, err := transport.NewEngine(cfg.TransportParams(), net, src, opts...)
	if err != nil {
		return nil, err
	}
	ens := ensemble.New(engine, cfg.Motor.Start.Point(), cfg.Destination.Box())
	if err := ens.Run(fe.trials); err != nil {
		return nil, err
	}
	return ens.Records(), nil
}

// copyConfig returns a copy of the base config whose calibrated fields can
// be changed without touching the base.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
