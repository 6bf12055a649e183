package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/junction"
	"github.com/pthm-cable/microtubule/overlap"
	"github.com/pthm-cable/microtubule/telemetry"
)

func newJunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "junctions",
		Short: "Route along filaments from the motor start to the destination",
		Long: `Join tubes wherever they cross, contract the resulting graph and find the
shortest path along filaments from motor.start to the destination center.
The walking time of that path at motor.movement_rate is a lower bound on
the bound part of any transport run that follows it.`,
		RunE: run(func(cmd *cobra.Command, env *runEnv) error {
			net, _, err := env.generate()
			if err != nil {
				return err
			}
			maxGap, _ := cmd.Flags().GetFloat64("max-gap")

			env.perf.StartPhase(telemetry.PhaseOverlap)
			crossings := overlap.TubeCrossings(net, maxGap)
			g, err := junction.Build(net, crossings)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.stdout, "vertices=%d junctions=%d\n", g.Vertices(), g.Junctions())

			dest := env.cfg.Destination.Box()
			center := geom.Pt(
				(dest.Min.X+dest.Max.X)/2,
				(dest.Min.Y+dest.Max.Y)/2,
				(dest.Min.Z+dest.Max.Z)/2,
			)
			path, err := g.ShortestPath(env.cfg.Motor.Start.Point(), center)
			if errors.Is(err, junction.ErrUnreachable) {
				fmt.Fprintln(env.stdout, "unreachable")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(env.stdout, "path length=%.6f vertices=%d walk_time=%.6f\n",
				path.Length, len(path.Points), path.Length/env.cfg.Motor.MovementRate)

			env.perf.StartPhase(telemetry.PhaseExport)
			return env.exporter.Path("guided_path", path.Points)
		}),
	}
	cmd.Flags().Float64("max-gap", 1e-6, "Largest miss distance at which two tubes count as joined")
	return cmd
}
