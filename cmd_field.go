package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/export"
	"github.com/pthm-cable/microtubule/field"
	"github.com/pthm-cable/microtubule/telemetry"
)

func newFieldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Export the filament direction field",
		Long: `Build the vector field of segment directions anchored at segment starts,
export it, and resample it onto a regular mesh written as six-column MATLAB
text (mesh.dat).`,
		RunE: run(func(cmd *cobra.Command, env *runEnv) error {
			net, _, err := env.generate()
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("mesh-steps")
			if steps <= 0 {
				steps = env.cfg.Export.MeshSteps
			}

			f := field.Build(net)
			mesh := field.Mesh(f, steps)
			fmt.Fprintf(env.stdout, "field samples=%d mesh=%d\n", len(f), len(mesh))

			env.perf.StartPhase(telemetry.PhaseExport)
			if err := env.exporter.VectorField("field", f); err != nil {
				return err
			}
			dir := env.out.Dir()
			if dir == "" {
				dir = "."
			}
			return export.MeshDAT(dir, "mesh", mesh)
		}),
	}
	cmd.Flags().Int("mesh-steps", 0, "Mesh points per axis (0 = use config)")
	return cmd
}
