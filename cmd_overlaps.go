package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/overlap"
	"github.com/pthm-cable/microtubule/telemetry"
)

func newOverlapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlaps",
		Short: "Find where filament segments overlap",
		Long: `Probe every segment against every other and export the overlap points.
With --between-tubes only crossings of two different tubes are reported,
once per pair, and --max-gap bounds how far the two lines may miss.`,
		RunE: run(func(cmd *cobra.Command, env *runEnv) error {
			net, _, err := env.generate()
			if err != nil {
				return err
			}
			betweenTubes, _ := cmd.Flags().GetBool("between-tubes")
			maxGap, _ := cmd.Flags().GetFloat64("max-gap")

			env.perf.StartPhase(telemetry.PhaseOverlap)
			var xs []overlap.Intersection
			if betweenTubes {
				xs = overlap.TubeCrossings(net, maxGap)
			} else {
				xs = overlap.AllOverlaps(net)
			}
			fmt.Fprintf(env.stdout, "overlaps=%d segments=%d\n", len(xs), net.Len())

			env.perf.StartPhase(telemetry.PhaseExport)
			return env.exporter.Points("overlaps", overlap.Points(xs))
		}),
	}
	cmd.Flags().Bool("between-tubes", false, "Only report crossings between different tubes")
	cmd.Flags().Float64("max-gap", 1e-6, "Largest miss distance accepted with --between-tubes")
	return cmd
}
