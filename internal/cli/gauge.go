// internal/cli/gauge.go
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FrankJIE09/Hans-robot/internal/measure"
)

// GaugeOptions holds flags for the gauge command.
type GaugeOptions struct {
	*RootOptions
	Dummy bool
}

// NewGaugeCommand creates the gauge command.
func NewGaugeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GaugeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gauge",
		Short: "Take one averaged gauge reading",
		Long: `Open the gauge port, take one averaged reading and print every channel in mm.
Useful for checking wiring and the hub address before a run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return readGauge(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Dummy, "dummy", false, "use the simulated gauge hub")

	return cmd
}

func readGauge(opts *GaugeOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	session, err := measure.BuildGauge(cfg.Gauge, opts.Dummy || cfg.Robot.Dummy, time.Now().UnixNano())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid gauge config", err)
	}

	reading, err := session.ReadAveraged(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "gauge read failed", err)
	}

	out := cmd.OutOrStdout()
	for i, ch := range reading {
		if !ch.Valid() {
			fmt.Fprintf(out, "channel %d: absent\n", i+1)
			continue
		}
		fmt.Fprintf(out, "channel %d: %.3f mm (%d/%d samples)\n", i+1, ch.Value, ch.Samples, cfg.Gauge.Attempts)
	}
	return nil
}
