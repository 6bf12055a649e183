package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/microtubule/network"
	"github.com/pthm-cable/microtubule/surface"
	"github.com/pthm-cable/microtubule/telemetry"
	"github.com/pthm-cable/microtubule/transport"
)

// newEngine builds a transport engine over net from config, reporting its
// phases to the env's perf collector. net may be nil for pure diffusion.
func (e *runEnv) newEngine(net *network.Network) (*transport.Engine, error) {
	opts, err := e.cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, transport.WithTimer(e.perf))
	return transport.NewEngine(e.cfg.TransportParams(), net, e.src, opts...)
}

func newTransportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transport",
		Short: "Move one motor to the destination and report the delay",
		Long: `Generate a network, place one motor at motor.start and alternate Brownian
floating and walking along filaments until the motor is inside the
destination box or the iteration budget runs out. The trajectory is
exported and the run is appended to trials.csv.

With --free-diffusion N the network is ignored and the motor diffuses for
at most N steps.`,
		RunE: run(func(cmd *cobra.Command, env *runEnv) error {
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

			dest := env.cfg.Destination.Box()
			m := transport.NewMotor(env.cfg.Motor.Start.Point(), &dest)
			var r transport.Result
			if freeSteps > 0 {
				r = engine.Float2Destination(m, freeSteps)
			} else {
				r = engine.Move2Destination(m)
			}
			slog.Info("transport", "result", r)
			fmt.Fprintf(env.stdout, "run %s state=%s elapsed=%.6f steps=%d binds=%d iterations=%d\n",
				r.RunID, r.State, r.Elapsed, r.Steps, r.Binds, r.Iterations)

			for i, s := range engine.Surfaces() {
				if s.Kind != surface.FluxMeter {
					continue
				}
				in, out := s.MotorCrossings()
				fmt.Fprintf(env.stdout, "meter %d inward=%d outward=%d\n", i, in, out)
			}

			rec := telemetry.TrialRecord{
				RunID:        r.RunID,
				State:        r.State.String(),
				Arrived:      r.Arrived(),
				Elapsed:      r.Elapsed,
				Steps:        r.Steps,
				Binds:        r.Binds,
				Iterations:   r.Iterations,
				WalkDistance: r.WalkDistance,
			}
			if net != nil {
				rec.Network = fmt.Sprintf("%016x", net.Fingerprint())
			}
			final := r.Final()
			rec.FinalX, rec.FinalY, rec.FinalZ = final.X, final.Y, final.Z
			rec.MeterIn, rec.MeterOut = engine.MeterCrossings()
			if err := env.out.WriteTrial(rec); err != nil {
				return err
			}

			env.perf.StartPhase(telemetry.PhaseExport)
			return env.exporter.Path("trajectory", r.History)
		}),
	}
	cmd.Flags().Int("free-diffusion", 0, "Ignore filaments and diffuse for at most N steps")
	return cmd
}
