// internal/cli/frame.go
package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FrankJIE09/Hans-robot/internal/gauge/frame"
)

// FrameOptions holds flags for the frame command.
type FrameOptions struct {
	*RootOptions
	Address uint8
	Start   uint16
	Count   uint16
	Verify  bool
}

// NewFrameCommand creates the frame command.
func NewFrameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FrameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "frame [response-hex]",
		Short: "Encode a read command or decode a hub response",
		Long: `Without arguments, print the read-registers command frame in hex.
With a hex string, decode it as a hub response and print the channel values.

Example:
  hansrig frame --address 128 --count 8
  hansrig frame "80 03 10 00 00 00 64 ..."`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return decodeFrame(opts, cmd, args[0])
			}
			return encodeFrame(opts, cmd)
		},
	}

	cmd.Flags().Uint8Var(&opts.Address, "address", 128, "hub address")
	cmd.Flags().Uint16Var(&opts.Start, "start", 0, "first register")
	cmd.Flags().Uint16Var(&opts.Count, "count", 8, "register count")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "check the response checksum")

	return cmd
}

func encodeFrame(opts *FrameOptions, cmd *cobra.Command) error {
	b := frame.EncodeCommand(opts.Address, frame.FuncReadHoldingRegisters, frame.ReadRegistersPayload(opts.Start, opts.Count))
	fmt.Fprintln(cmd.OutOrStdout(), formatHex(b))
	return nil
}

func decodeFrame(opts *FrameOptions, cmd *cobra.Command, s string) error {
	b, err := parseHex(s)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid hex", err)
	}

	if opts.Verify {
		if err := frame.VerifyChecksum(b); err != nil {
			return WrapExitError(ExitFailure, "checksum", err)
		}
	}

	values, err := frame.DecodeResponse(b)
	if err != nil {
		return WrapExitError(ExitFailure, "decode", err)
	}

	out := cmd.OutOrStdout()
	for i, v := range values {
		fmt.Fprintf(out, "channel %d: %.3f mm\n", i+1, v)
	}
	return nil
}

func formatHex(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}

// parseHex accepts "8003..." as well as "80 03 ..." and "80:03:...".
func parseHex(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "\t", "", "0x", "").Replace(s)
	return hex.DecodeString(clean)
}
