// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FrankJIE09/Hans-robot/internal/status"
)

// StatusWriter delivers a snapshot verbatim. No interpretation.
type StatusWriter struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     [status.SlotLiveCount]uint16
	nameRegs []uint16
}

// NewStatusWriter returns a writer whose first delivery re-asserts the whole block.
func NewStatusWriter(plan Plan, cli endpointClient) (*StatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if int(plan.BaseRegister)+status.SlotsPerBlock > 0x10000 {
		return nil, fmt.Errorf("status writer: base register %d leaves no room for the block", plan.BaseRegister)
	}

	return &StatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true,
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}, nil
}

// WriteStatus delivers s for the given iteration.
// On any write failure, the next successful call will re-assert the full block.
func (sw *StatusWriter) WriteStatus(s status.Snapshot, iteration int) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}

	regs := s.Registers(iteration)

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, sw.plan.BaseRegister, sw.fullBlockRegs(regs)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Changed slots only
	// ------------------------------------------------------------
	var errs []string
	for slot, v := range regs {
		if sw.last[slot] == v {
			continue
		}
		addr := sw.plan.BaseRegister + uint16(slot)
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, addr, []uint16{v}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
			continue
		}
		sw.last[slot] = v
	}

	if len(errs) > 0 {
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (sw *StatusWriter) fullBlockRegs(live [status.SlotLiveCount]uint16) []uint16 {
	regs := make([]uint16, status.SlotsPerBlock)
	copy(regs, live[:])

	// reserved slots stay zero; the name always lives at the end of the block
	copy(regs[status.SlotDeviceNameStart:], sw.nameRegs)
	return regs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 registers,
// two characters per register, big-endian.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}
	for i := range b {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < len(b); i += 2 {
		hi := b[i]
		var lo byte
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}
	return out
}
