// internal/cli/root.go

// Package cli implements the hansrig command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FrankJIE09/Hans-robot/internal/config"
	"github.com/FrankJIE09/Hans-robot/internal/log"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config    string
	Verbose   bool
	LogFormat string // "text" | "json"; empty defers to the config file
}

// ValidLogFormats defines the allowed log formats.
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hansrig",
		Short: "Repeatability measurement rig for Hans Elfin arms",
		Long: `Drive a Hans Elfin arm through repeated target/lift/perturb/return cycles
and record dial gauge readings after every cycle.

Configuration is read from a YAML file and HANSRIG_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogFormat != "" && !isValidLogFormat(opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidLogFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to YAML config")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewGaugeCommand(opts))
	cmd.AddCommand(NewFrameCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

// loadConfig loads, validates and normalizes the configuration, then
// initializes logging from it and the global flags.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	config.Normalize(cfg)

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	format := cfg.Log.Format
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}
	log.Init(cmd.ErrOrStderr(), level, format)

	return cfg, nil
}

func isValidLogFormat(format string) bool {
	for _, f := range ValidLogFormats {
		if f == format {
			return true
		}
	}
	return false
}
