// internal/writer/types.go

// Package writer publishes the rig's status block to a Modbus TCP endpoint.
package writer

// endpointClient is the write side of one Modbus TCP connection.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
	Close() error
}

// Plan locates the status block on the endpoint.
type Plan struct {
	Endpoint     string
	UnitID       uint8
	BaseRegister uint16
	DeviceName   string
}
