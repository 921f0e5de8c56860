// internal/status/layout.go
package status

// ---- PUBLISHED STATUS BLOCK ----
//
// The rig mirrors its latest iteration verdict into a block of holding
// registers so a PLC or HMI can watch a long run.

// SlotsPerBlock is the fixed number of registers in the status block.
const SlotsPerBlock = 20

// SlotHealthCode holds the health of the latest iteration.
const SlotHealthCode = 0

// SlotLastErrorCode holds the latest error code, two's complement.
const SlotLastErrorCode = 1

// SlotStopsReached holds how many cycle stops the latest iteration reached.
const SlotStopsReached = 2

// SlotValidChannels holds how many gauge channels produced a value.
const SlotValidChannels = 3

// SlotIteration holds the 1-based iteration number. 0 before the first record.
const SlotIteration = 4

// SlotLiveCount is the number of live slots starting at slot 0.
const SlotLiveCount = 5

// Slots 5..11 are reserved and written as zero.

// SlotDeviceNameStart is the first slot used for the rig name.
const SlotDeviceNameStart = 12

// SlotDeviceNameSlots is the number of slots reserved for the rig name.
const SlotDeviceNameSlots = 8

// DeviceNameMaxChars is the maximum number of ASCII characters stored for the rig name.
const DeviceNameMaxChars = 2 * SlotDeviceNameSlots

// Registers returns the live slots for s at the given iteration.
// Values that do not fit a register saturate instead of wrapping.
func (s Snapshot) Registers(iteration int) [SlotLiveCount]uint16 {
	var regs [SlotLiveCount]uint16
	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = errorCodeRegister(s.LastErrorCode)
	regs[SlotStopsReached] = saturate(s.StopsReached)
	regs[SlotValidChannels] = saturate(s.ValidChannels)
	regs[SlotIteration] = saturate(iteration)
	return regs
}

func saturate(v int) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 0xFFFF:
		return 0xFFFF
	}
	return uint16(v)
}

// errorCodeRegister keeps negative sentinels readable as int16 while
// controller codes up to 65535 pass through unchanged.
func errorCodeRegister(code int) uint16 {
	switch {
	case code < -0x8000:
		code = -0x8000
	case code > 0xFFFF:
		code = 0xFFFF
	}
	return uint16(code)
}
