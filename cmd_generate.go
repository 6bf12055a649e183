package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/telemetry"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a filament network and report its structure",
		Long: `Generate a microtubule network from the configured characteristics,
report its structural entropy and fingerprint, measure filament flux through
every configured surface and export the tubes.`,
		RunE: run(func(cmd *cobra.Command, env *runEnv) error {
			net, ch, err := env.generate()
			if err != nil {
				return err
			}
			estimate, _ := cmd.Flags().GetBool("estimate")

			fmt.Fprintf(env.stdout, "network %016x tubes=%d segments=%d segment_length=%g entropy=%.6f\n",
				net.Fingerprint(), net.NumTubes(), net.Len(), ch.SegmentLength(), net.Entropy())
			if estimate {
				lp := network.EstimatePersistenceLength(net)
				fmt.Fprintf(env.stdout, "persistence_length configured=%g estimated=%.3f\n", ch.PersistenceLength(), lp)
			}

			surfaces, err := env.cfg.BuildSurfaces()
			if err != nil {
				return err
			}
			for i, s := range surfaces {
				flux := s.Flux(net)
				slog.Info("surface flux", "surface", i, "kind", s.Kind.String(), "flux", flux)
				fmt.Fprintf(env.stdout, "surface %d %s crossings=%d net=%.6f density=%.6g\n",
					i, s.Kind, flux.Crossings, flux.Net, flux.Density)
			}

			env.perf.StartPhase(telemetry.PhaseExport)
			if snapshot, _ := cmd.Flags().GetBool("snapshot"); snapshot {
				path, err := telemetry.SaveSnapshot(telemetry.NewSnapshot(net, ch, env.seed), env.dir)
				if err != nil {
					return err
				}
				slog.Info("network saved", "path", path)
				fmt.Fprintf(env.stdout, "snapshot %s\n", path)
			}
			if err := env.exporter.Tubes("tubes", net); err != nil {
				return err
			}
			return env.exporter.Points("tube_points", net.Points())
		}),
	}
	cmd.Flags().Bool("estimate", false, "Also estimate the persistence length back from the generated angles")
	cmd.Flags().Bool("snapshot", false, "Save the network as JSON for reuse with --network")
	return cmd
}
