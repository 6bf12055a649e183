package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/export"
	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/telemetry"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Sweep persistence length and record structural entropy",
		Long: `Regenerate the network in place for evenly spaced persistence lengths
between sweep.min_persistence and sweep.max_persistence and record the
structural entropy of each. Results go to sweep.csv and an entropy series
export; with sweep.export_tubes every intermediate network is exported too.`,
		RunE: run(func(cmd *cobra.Command, env *runEnv) error {
			sc := env.cfg.Sweep
			lengths := network.LinearLengths(sc.MinPersistence, sc.MaxPersistence, sc.Points)

			var visitErr error
			visit := func(p network.SweepPoint, net *network.Network) {
				slog.Debug("sweep point", "persistence_length", p.PersistenceLength, "entropy", p.Entropy)
				if !sc.ExportTubes || visitErr != nil {
					return
				}
				visitErr = env.exporter.Tubes(fmt.Sprintf("tubes_lp_%g", p.PersistenceLength), net)
			}

			env.perf.StartPhase(telemetry.PhaseGenerate)
			points, err := network.PersistenceSweep(env.cfg.Characteristics(), env.src, lengths, visit, env.cfg.GenerateOptions()...)
			if err != nil {
				return err
			}
			if visitErr != nil {
				return visitErr
			}
			if err := env.out.WriteSweep(points); err != nil {
				return err
			}

			xy := make([]export.XY, len(points))
			for i, p := range points {
				xy[i] = export.XY{X: p.PersistenceLength, Y: p.Entropy}
				fmt.Fprintf(env.stdout, "persistence_length=%g entropy=%.6f\n", p.PersistenceLength, p.Entropy)
			}
			env.perf.StartPhase(telemetry.PhaseExport)
			return env.exporter.Series("entropy", "persistence length", "structural entropy", xy)
		}),
	}
}
