package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one transport run.
const (
	PhaseGenerate = "generate"
	PhaseOverlap  = "overlap"
	PhaseFloat    = "float"
	PhaseWalk     = "walk"
	PhaseExport   = "export"
)

var phases = []string{PhaseGenerate, PhaseOverlap, PhaseFloat, PhaseWalk, PhaseExport}

// PerfSample holds timing data for a single run.
type PerfSample struct {
	RunDuration time.Duration
	Phases      map[string]time.Duration
}

// PerfCollector tracks wall-clock cost of runs over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	runStart      time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize runs.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 32
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartRun begins timing a new run.
func (p *PerfCollector) StartRun() {
	p.runStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the previous phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndRun finishes timing the current run and records the sample.
func (p *PerfCollector) EndRun() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}

	p.samples[p.writeIndex] = PerfSample{
		RunDuration: now.Sub(p.runStart),
		Phases:      p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Runs           int
	AvgRunDuration time.Duration
	MinRunDuration time.Duration
	MaxRunDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration
	// Phase percentages of total run time
	PhasePct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Runs:     p.sampleCount,
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.sampleCount == 0 {
		return s
	}

	var total time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		sample := p.samples[i]
		total += sample.RunDuration
		if i == 0 || sample.RunDuration < s.MinRunDuration {
			s.MinRunDuration = sample.RunDuration
		}
		if sample.RunDuration > s.MaxRunDuration {
			s.MaxRunDuration = sample.RunDuration
		}
		for phase, d := range sample.Phases {
			phaseSum[phase] += d
		}
	}

	s.AvgRunDuration = total / time.Duration(p.sampleCount)
	for phase, sum := range phaseSum {
		s.PhaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if s.AvgRunDuration > 0 {
			s.PhasePct[phase] = float64(s.PhaseAvg[phase]) / float64(s.AvgRunDuration) * 100
		}
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("runs", s.Runs),
		slog.Int64("avg_run_us", s.AvgRunDuration.Microseconds()),
		slog.Int64("min_run_us", s.MinRunDuration.Microseconds()),
		slog.Int64("max_run_us", s.MaxRunDuration.Microseconds()),
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Label       string  `csv:"label"`
	Runs        int     `csv:"runs"`
	AvgRunUS    int64   `csv:"avg_run_us"`
	MinRunUS    int64   `csv:"min_run_us"`
	MaxRunUS    int64   `csv:"max_run_us"`
	GeneratePct float64 `csv:"generate_pct"`
	OverlapPct  float64 `csv:"overlap_pct"`
	FloatPct    float64 `csv:"float_pct"`
	WalkPct     float64 `csv:"walk_pct"`
	ExportPct   float64 `csv:"export_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(label string) PerfStatsCSV {
	return PerfStatsCSV{
		Label:       label,
		Runs:        s.Runs,
		AvgRunUS:    s.AvgRunDuration.Microseconds(),
		MinRunUS:    s.MinRunDuration.Microseconds(),
		MaxRunUS:    s.MaxRunDuration.Microseconds(),
		GeneratePct: s.PhasePct[PhaseGenerate],
		OverlapPct:  s.PhasePct[PhaseOverlap],
		FloatPct:    s.PhasePct[PhaseFloat],
		WalkPct:     s.PhasePct[PhaseWalk],
		ExportPct:   s.PhasePct[PhaseExport],
	}
}
