// internal/cli/run.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FrankJIE09/Hans-robot/internal/config"
	"github.com/FrankJIE09/Hans-robot/internal/log"
	"github.com/FrankJIE09/Hans-robot/internal/measure"
	"github.com/FrankJIE09/Hans-robot/internal/results"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Iterations int
	Dummy      bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a repeatability measurement",
		Long: `Run the configured number of measurement cycles around target_pose.

Each cycle moves to the target, lifts, moves to a random pose near the lifted
pose and returns, then takes one averaged gauge reading. Results are written
to a timestamped CSV file in output.dir (and to output.sqlite when set).
The arm parks at the lifted pose when the run ends or is interrupted.

Example:
  hansrig run --config rig.yaml
  hansrig run --config rig.yaml --iterations 10 --dummy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeasurement(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 0, "number of cycles (overrides config)")
	cmd.Flags().BoolVar(&opts.Dummy, "dummy", false, "use the simulated arm and gauge")

	return cmd
}

func runMeasurement(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	iterations := cfg.Iterations
	if opts.Iterations > 0 {
		iterations = opts.Iterations
	}

	rig, err := measure.Build(cfg, opts.Dummy)
	if err != nil {
		if errors.Is(err, config.ErrNoTargetPose) {
			return WrapExitError(ExitCommandError, "cannot start run", err)
		}
		return WrapExitError(ExitFailure, "failed to set up rig", err)
	}
	defer func() {
		if cerr := rig.Close(); cerr != nil {
			log.Error("close failed", "err", cerr)
		}
	}()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// after the first interrupt the park runs; a second one takes the default action
	go func() {
		<-ctx.Done()
		stop()
	}()

	target := rig.Target
	recs, runErr := rig.Runner.Run(ctx, &target, iterations)

	printSummary(cmd, recs, rig.Outputs)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Warn("run interrupted", "completed", len(recs))
			return nil
		}
		return WrapExitError(ExitFailure, "run failed", runErr)
	}
	return nil
}

func printSummary(cmd *cobra.Command, recs []results.Record, outputs []string) {
	counts := map[string]int{}
	for _, r := range recs {
		counts[r.Status.String()]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "iterations: %d\n", len(recs))
	printCounts(out, counts)
	for _, p := range outputs {
		fmt.Fprintf(out, "saved: %s\n", p)
	}
}
