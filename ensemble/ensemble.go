// Package ensemble repeats transport runs over one network and summarizes
// the propagation delays.
//
// Each finished run is an entity in an ark world carrying a Trial and an
// Outcome component. Runs are strictly sequential: one motor moves at a
// time and every run draws from the engine's single random stream.
package ensemble

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/telemetry"
	"github.com/pthm-cable/microtubule/transport"
)

// Trial identifies one run.
type Trial struct {
	Index   int
	RunID   string
	Network uint64 // network fingerprint, 0 for pure diffusion
	Start   geom.Point
}

// Outcome is the result of one run without its trajectory.
type Outcome struct {
	State        transport.State
	Elapsed      float64
	Steps        int
	Binds        int
	Iterations   int
	WalkDistance float64
	Final        geom.Point
	MeterIn      int // flux meter crossings during this run
	MeterOut     int
}

// Ensemble runs and stores transport trials.
type Ensemble struct {
	engine *transport.Engine
	start  geom.Point
	dest   geom.Box

	world  *ecs.World
	mapper *ecs.Map2[Trial, Outcome]
	filter *ecs.Filter2[Trial, Outcome]
	count  int

	diffusionBudget int
	perf            *telemetry.PerfCollector
	output          *telemetry.OutputManager
	logTrials       bool
}

// Option configures an Ensemble.
type Option func(*Ensemble)

// WithPerf times every run with pc. The engine should report its phases to
// the same collector through transport.WithTimer.
func WithPerf(pc *telemetry.PerfCollector) Option {
	return func(e *Ensemble) { e.perf = pc }
}

// WithOutput writes every run to trials.csv.
func WithOutput(om *telemetry.OutputManager) Option {
	return func(e *Ensemble) { e.output = om }
}

// WithFreeDiffusion ignores filaments and moves motors by Brownian motion
// alone for at most budget steps.
func WithFreeDiffusion(budget int) Option {
	return func(e *Ensemble) { e.diffusionBudget = budget }
}

// WithTrialLogging logs every run at info level.
func WithTrialLogging(on bool) Option {
	return func(e *Ensemble) { e.logTrials = on }
}

// New creates an ensemble whose motors start at start and head for dest.
func New(engine *transport.Engine, start geom.Point, dest geom.Box, opts ...Option) *Ensemble {
	e := &Ensemble{
		engine: engine,
		start:  start,
		dest:   dest,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset discards all stored runs.
func (e *Ensemble) Reset() {
	e.world = ecs.NewWorld()
	e.mapper = ecs.NewMap2[Trial, Outcome](e.world)
	e.filter = ecs.NewFilter2[Trial, Outcome](e.world)
	e.count = 0
}

// Len returns the number of stored runs.
func (e *Ensemble) Len() int { return e.count }

// Run performs n more runs.
func (e *Ensemble) Run(n int) error {
	for i := 0; i < n; i++ {
		if _, err := e.RunOne(); err != nil {
			return err
		}
	}
	return nil
}

// RunOne performs a single run, stores it and returns its full result.
// Surface crossing counts are cleared first so each run's meter readings
// are its own.
func (e *Ensemble) RunOne() (transport.Result, error) {
	e.engine.ResetMeters()
	if e.perf != nil {
		e.perf.StartRun()
	}

	dest := e.dest
	m := transport.NewMotor(e.start, &dest)
	var r transport.Result
	if e.diffusionBudget > 0 {
		r = e.engine.Float2Destination(m, e.diffusionBudget)
	} else {
		r = e.engine.Move2Destination(m)
	}

	if e.perf != nil {
		e.perf.EndRun()
	}

	trial := Trial{Index: e.count, RunID: r.RunID, Start: e.start}
	if net := e.engine.Network(); net != nil {
		trial.Network = net.Fingerprint()
	}
	outcome := Outcome{
		State:        r.State,
		Elapsed:      r.Elapsed,
		Steps:        r.Steps,
		Binds:        r.Binds,
		Iterations:   r.Iterations,
		WalkDistance: r.WalkDistance,
		Final:        r.Final(),
	}
	outcome.MeterIn, outcome.MeterOut = e.engine.MeterCrossings()
	e.mapper.NewEntity(&trial, &outcome)
	e.count++

	if e.logTrials {
		slog.Info("trial", "index", trial.Index, "result", r)
	} else {
		slog.Debug("trial", "index", trial.Index, "result", r)
	}
	if err := e.output.WriteTrial(record(trial, outcome)); err != nil {
		return r, err
	}
	return r, nil
}

func record(t Trial, o Outcome) telemetry.TrialRecord {
	return telemetry.TrialRecord{
		Trial:        t.Index,
		RunID:        t.RunID,
		Network:      fmt.Sprintf("%016x", t.Network),
		State:        o.State.String(),
		Arrived:      o.State == transport.Arrived,
		Elapsed:      o.Elapsed,
		Steps:        o.Steps,
		Binds:        o.Binds,
		Iterations:   o.Iterations,
		WalkDistance: o.WalkDistance,
		FinalX:       o.Final.X,
		FinalY:       o.Final.Y,
		FinalZ:       o.Final.Z,
		MeterIn:      o.MeterIn,
		MeterOut:     o.MeterOut,
	}
}

// Records returns every stored run in run order.
func (e *Ensemble) Records() []telemetry.TrialRecord {
	records := make([]telemetry.TrialRecord, 0, e.count)
	query := e.filter.Query()
	for query.Next() {
		trial, outcome := query.Get()
		records = append(records, record(*trial, *outcome))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Trial < records[j].Trial })
	return records
}

// Delays returns the elapsed time of every arrived run in run order.
func (e *Ensemble) Delays() []float64 {
	var delays []float64
	for _, r := range e.Records() {
		if r.Arrived {
			delays = append(delays, r.Elapsed)
		}
	}
	return delays
}

// Summary computes arrival ratio and delay statistics over stored runs.
func (e *Ensemble) Summary() telemetry.EnsembleStats {
	return telemetry.ComputeEnsembleStats(e.Records(), e.engine.Params().MovementRate)
}
