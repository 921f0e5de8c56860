// internal/cli/report.go
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FrankJIE09/Hans-robot/internal/results"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	DB   string
	Last int
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize stored runs",
		Long: `List runs stored in the SQLite results database with per-health iteration counts.
The database defaults to output.sqlite from the configuration.

Example:
  hansrig report --config rig.yaml
  hansrig report --db data/results.db --last 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "results database (overrides output.sqlite)")
	cmd.Flags().IntVar(&opts.Last, "last", 10, "number of runs to list (0 lists all)")

	return cmd
}

func report(opts *ReportOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	path := cfg.Output.SQLite
	if opts.DB != "" {
		path = opts.DB
	}
	if path == "" {
		return WrapExitError(ExitCommandError, "no results database", fmt.Errorf("set --db or output.sqlite"))
	}

	store, err := results.OpenStore(path)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open results", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	runs, err := store.Runs(ctx, opts.Last)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list runs", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs")
		return nil
	}

	for _, r := range runs {
		dry := ""
		if r.DryRun {
			dry = " (dry run)"
		}
		fmt.Fprintf(out, "%s  %s  %d/%d%s\n", r.ID, r.StartedAt, r.Recorded, r.Iterations, dry)

		counts, err := store.HealthCounts(ctx, r.ID)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to count iterations", err)
		}
		printCounts(out, counts)
	}
	return nil
}

// reportOrder is the order health counts are printed in.
var reportOrder = []uint16{
	status.HealthOK,
	status.HealthGaugePartial,
	status.HealthGaugeError,
	status.HealthMotionError,
	status.HealthMotionTimeout,
	status.HealthAborted,
}

func printCounts(out io.Writer, counts map[string]int) {
	for _, h := range reportOrder {
		name := status.HealthName(h)
		if n := counts[name]; n > 0 {
			fmt.Fprintf(out, "  %-15s %d\n", name, n)
		}
	}
}
