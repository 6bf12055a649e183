package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/ensemble"
	"github.com/pthm-cable/microtubule/export"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/telemetry"
)

func newEnsembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Repeat transport runs on one network and summarize the delays",
		Long: `Generate one network and run motors from motor.start one after another,
all drawing from the same random stream. Every run is appended to
trials.csv; the summary reports the arrival ratio and the delay
distribution of arrived runs.`,
		RunE: run(func(cmd *cobra.Command, env *runEnv) error {
			trials, _ := cmd.Flags().GetInt("trials")
			if trials <= 0 {
				trials = env.cfg.Ensemble.Trials
			}
			freeSteps, _ := cmd.Flags().GetInt("free-diffusion")

			var net *network.Network
			if freeSteps <= 0 {
				var err error
				if net, _, err = env.generate(); err != nil {
					return err
				}
			}
			engine, err := env.newEngine(net)
			if err != nil {
				return err
			}

			opts := []ensemble.Option{
				ensemble.WithOutput(env.out),
				ensemble.WithTrialLogging(env.cfg.Telemetry.LogTrials),
			}
			if freeSteps > 0 {
				opts = append(opts, ensemble.WithFreeDiffusion(freeSteps))
			}
			ens := ensemble.New(engine, env.cfg.Motor.Start.Point(), env.cfg.Destination.Box(), opts...)
			if err := ens.Run(trials); err != nil {
				return err
			}

			s := ens.Summary()
			s.LogStats()
			fmt.Fprintf(env.stdout, "trials=%d arrived=%d arrival_rate=%.4f delay_mean=%.6f delay_std=%.6f p10=%.6f p50=%.6f p90=%.6f\n",
				s.Trials, s.Arrived, s.ArrivalRate, s.DelayMean, s.DelayStd, s.DelayP10, s.DelayP50, s.DelayP90)

			env.perf.StartPhase(telemetry.PhaseExport)
			delays := ens.Delays()
			xy := make([]export.XY, len(delays))
			for i, d := range delays {
				xy[i] = export.XY{X: float64(i), Y: d}
			}
			return env.exporter.Series("delays", "arrived run", "propagation delay", xy)
		}),
	}
	cmd.Flags().Int("trials", 0, "Number of runs (0 = use config)")
	cmd.Flags().Int("free-diffusion", 0, "Ignore filaments and diffuse for at most N steps per run")
	return cmd
}
