package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/config"
	"github.com/pthm-cable/microtubule/export"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/rng"
	"github.com/pthm-cable/microtubule/telemetry"
)

// runEnv is what every command needs: config, the one random stream and
// the output sinks.
type runEnv struct {
	cfg      *config.Config
	seed     int64
	src      *rand.Rand
	out      *telemetry.OutputManager
	exporter export.Exporter
	perf     *telemetry.PerfCollector
	stdout   io.Writer
	label    string

	dir         string // export and snapshot directory
	networkPath string // saved network to load instead of generating
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid --log-format %q (use 'json' or 'text')", format)
}

// setup reads the global flags, installs the logger, loads config and
// opens the output directory. The caller must call close.
func setup(cmd *cobra.Command) (*runEnv, error) {
	configPath, _ := cmd.Flags().GetString("config")
	seedFlag, _ := cmd.Flags().GetInt64("seed")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	logFormat, _ := cmd.Flags().GetString("log-format")
	logLevel, _ := cmd.Flags().GetString("log-level")
	networkPath, _ := cmd.Flags().GetString("network")

	logger, err := newLogger(cmd.ErrOrStderr(), logFormat, logLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	if err := config.Init(configPath); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := config.Cfg()

	seed := rng.Seed(seedFlag)
	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, err
	}

	exportDir := outputDir
	if exportDir == "" {
		exportDir = "."
	}
	exporter, err := export.New(cfg.Export.Format, exportDir)
	if err != nil {
		om.Close()
		return nil, err
	}

	env := &runEnv{
		cfg:      cfg,
		seed:     seed,
		src:      rng.New(seed),
		out:      om,
		exporter: exporter,
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		stdout:   cmd.OutOrStdout(),
		label:    cmd.Name(),

		dir:         exportDir,
		networkPath: networkPath,
	}
	slog.Info("starting", "command", env.label, "seed", seed, "output_dir", outputDir)
	env.perf.StartRun()
	return env, nil
}

// close records the command's timing and closes the output files.
func (e *runEnv) close() error {
	e.perf.EndRun()
	stats := e.perf.Stats()
	slog.Info("perf", "command", e.label, "stats", stats)
	err := e.out.WritePerf(stats, e.label)
	if cerr := e.out.Close(); err == nil {
		err = cerr
	}
	return err
}

// generate builds the configured network, or loads the saved one given
// with --network.
func (e *runEnv) generate() (*network.Network, *network.Characteristics, error) {
	e.perf.StartPhase(telemetry.PhaseGenerate)
	ch := e.cfg.Characteristics()
	if e.networkPath != "" {
		snap, err := telemetry.LoadSnapshot(e.networkPath)
		if err != nil {
			return nil, nil, err
		}
		net, err := snap.Network()
		if err != nil {
			return nil, nil, fmt.Errorf("load network %s: %w", e.networkPath, err)
		}
		ch = snap.Characteristics(ch)
		slog.Info("network loaded", "path", e.networkPath, "seed", snap.RNGSeed, "fingerprint", snap.Fingerprint, "characteristics", ch)
		return net, ch, nil
	}
	net, err := network.Generate(ch, e.src, e.cfg.GenerateOptions()...)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("network generated",
		"characteristics", ch,
		"entropy", net.Entropy(),
		"fingerprint", fmt.Sprintf("%016x", net.Fingerprint()),
	)
	return net, ch, nil
}

// run wraps a command body with setup and close.
func run(body func(cmd *cobra.Command, env *runEnv) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		bodyErr := body(cmd, env)
		if err := env.close(); bodyErr == nil {
			bodyErr = err
		}
		return bodyErr
	}
}
