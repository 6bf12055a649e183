// Package main calibrates network and motor parameters with CMA-ES so that
// transport ensembles hit a target mean propagation delay.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/microtubule/config"
)

// EvalRow is one line of calibrate_log.csv.
type EvalRow struct {
	Eval              int     `csv:"eval"`
	Fitness           float64 `csv:"fitness"`
	ArrivalRate       float64 `csv:"arrival_rate"`
	DelayMean         float64 `csv:"delay_mean"`
	PersistenceLength float64 `csv:"persistence_length"`
	MeanTubeLength    float64 `csv:"mean_tube_length"`
	Density           float64 `csv:"density"`
	BindingRadius     float64 `csv:"binding_radius"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 3, "Number of networks per evaluation")
	trials := flag.Int("trials", 0, "Transport runs per network (0 = use config)")
	target := flag.Float64("target", 0, "Target mean propagation delay (0 = use config)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	cc := baseCfg.Calibrate
	if *trials > 0 {
		cc.Trials = *trials
	}
	if *target > 0 {
		cc.TargetDelay = *target
	}
	if *maxEvals > 0 {
		cc.MaxEvals = *maxEvals
	}
	if cc.TargetDelay <= 0 || cc.Trials <= 0 {
		log.Fatalf("target delay and trials must be positive, got %v and %d", cc.TargetDelay, cc.Trials)
	}

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, evalSeeds, cc.Trials, cc.TargetDelay, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.Clamp(params.DefaultVector()))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: cc.MaxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: cc.Sigma,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	headerWritten := false

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		// Log clamped values, these are the values actually used
		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		stats := evaluator.LastStats()
		row := []EvalRow{{
			Eval:              evalCount,
			Fitness:           fitness,
			ArrivalRate:       stats.ArrivalRate,
			DelayMean:         stats.DelayMean,
			PersistenceLength: clamped[0],
			MeanTubeLength:    clamped[1],
			Density:           clamped[2],
			BindingRadius:     clamped[3],
		}}
		if !headerWritten {
			err = gocsv.Marshal(row, logFile)
			headerWritten = true
		} else {
			err = gocsv.MarshalWithoutHeaders(row, logFile)
		}
		if err != nil {
			log.Printf("failed to write log row: %v", err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(cc.MaxEvals-evalCount) * avgPerEval
		fmt.Printf("Eval %d/%d: arrival=%.2f delay=%.4f fitness=%.5f (best=%.5f) | elapsed: %s, ETA: %s\n",
			evalCount, cc.MaxEvals, stats.ArrivalRate, stats.DelayMean, fitness, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES calibration with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, cc.MaxEvals)
	fmt.Printf("Networks per evaluation: %d, runs per network: %d, target delay: %g\n",
		*seeds, cc.Trials, cc.TargetDelay)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.6f\n", bestFitness)
	if bestParams == nil {
		return
	}

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
