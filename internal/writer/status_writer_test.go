// internal/writer/status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/FrankJIE09/Hans-robot/internal/results"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

type regWrite struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []regWrite
	fail   bool
	closed bool
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("connection reset")
	}
	f.writes = append(f.writes, regWrite{unitID: unitID, addr: addr, regs: append([]uint16(nil), regs...)})
	return nil
}

func (f *fakeEndpointClient) Close() error {
	f.closed = true
	return nil
}

func (f *fakeEndpointClient) last() regWrite {
	return f.writes[len(f.writes)-1]
}

var plan = Plan{
	Endpoint:     "status-endpoint",
	UnitID:       3,
	BaseRegister: 100,
	DeviceName:   "RIG-01",
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}

	sw, err := NewStatusWriter(plan, cli)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK, StopsReached: 4, ValidChannels: 4}, 1); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	w := cli.last()
	if len(w.regs) != status.SlotsPerBlock {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerBlock, len(w.regs))
	}
	if w.addr != plan.BaseRegister || w.unitID != plan.UnitID {
		t.Fatalf("unexpected target: unit=%d addr=%d", w.unitID, w.addr)
	}

	expectedNameRegs := encodeDeviceNameRegs(plan.DeviceName)
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if w.regs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, w.regs[slot], expectedNameRegs[i])
		}
	}
	if w.regs[status.SlotDeviceNameStart] != uint16('R')<<8|uint16('I') {
		t.Fatalf("name not big-endian: %#x", w.regs[status.SlotDeviceNameStart])
	}

	// ---- second write: CHANGED SLOTS ONLY ----
	n := len(cli.writes)
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK, StopsReached: 4, ValidChannels: 4}, 2); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.writes) != n+1 {
		t.Fatalf("expected exactly one slot write, got %d", len(cli.writes)-n)
	}
	w = cli.last()
	if w.addr != plan.BaseRegister+status.SlotIteration || len(w.regs) != 1 || w.regs[0] != 2 {
		t.Fatalf("unexpected incremental write: %+v", w)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}

	sw, err := NewStatusWriter(plan, cli)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}, 1); err != nil {
		t.Fatalf("first write: %v", err)
	}

	cli.fail = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthMotionError, LastErrorCode: 40034}, 2); err == nil {
		t.Fatalf("expected error from failing endpoint")
	}

	cli.fail = false
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthMotionError, LastErrorCode: 40034}, 2); err != nil {
		t.Fatalf("recovery write: %v", err)
	}

	w := cli.last()
	if len(w.regs) != status.SlotsPerBlock {
		t.Fatalf("expected full block after failure, got %d regs", len(w.regs))
	}
	if w.regs[status.SlotLastErrorCode] != 40034 {
		t.Fatalf("last_error_code: got=%d want=40034", w.regs[status.SlotLastErrorCode])
	}
}

func TestNewStatusWriterRejectsBadPlan(t *testing.T) {
	if _, err := NewStatusWriter(plan, nil); err == nil {
		t.Fatalf("expected error for missing client")
	}

	p := plan
	p.BaseRegister = 0xFFF0
	if _, err := NewStatusWriter(p, &fakeEndpointClient{}); err == nil {
		t.Fatalf("expected error for block past the register space")
	}
}

func TestEncodeDeviceNameRegs(t *testing.T) {
	regs := encodeDeviceNameRegs("abc\n0123456789abcdefXYZ")

	if regs[0] != uint16('a')<<8|uint16('b') {
		t.Fatalf("slot0: %#x", regs[0])
	}
	if regs[1] != uint16('c')<<8|uint16('?') {
		t.Fatalf("control characters must be replaced: %#x", regs[1])
	}
	if len(regs) != status.SlotDeviceNameSlots {
		t.Fatalf("expected %d regs, got %d", status.SlotDeviceNameSlots, len(regs))
	}

	odd := encodeDeviceNameRegs("A")
	if odd[0] != uint16('A')<<8 || odd[1] != 0 {
		t.Fatalf("odd-length name: %v", odd)
	}
}

func TestStatusSinkIsBestEffort(t *testing.T) {
	cli := &fakeEndpointClient{}

	s, err := NewStatusSink(plan, cli)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := s.Begin(results.Run{ID: "r1"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got := cli.last().regs[status.SlotHealthCode]; got != status.HealthUnknown {
		t.Fatalf("begin must clear health, got %d", got)
	}

	cli.fail = true
	rec := results.Record{Iteration: 1, Status: status.Snapshot{Health: status.HealthOK}}
	if err := s.Write(rec); err != nil {
		t.Fatalf("publish failure must not surface: %v", err)
	}

	cli.fail = false
	rec.Iteration = 2
	if err := s.Write(rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	w := cli.last()
	if len(w.regs) != status.SlotsPerBlock || w.regs[status.SlotIteration] != 2 {
		t.Fatalf("expected full re-assert for iteration 2, got %+v", w)
	}

	if err := s.Close(); err != nil || !cli.closed {
		t.Fatalf("close: err=%v closed=%v", err, cli.closed)
	}
}
