// Package protocol holds the shared data types passed between the bus
// engines, the host endpoint and the orchestrator.
package protocol

import "time"

// NumBuses is the number of RS-485 buses the board exposes (six PIO soft-UART
// channels; a seventh PIO channel may be repurposed for DMX). Bus ids carried
// on the wire or in a BusConfig must satisfy Bus < NumBuses.
const NumBuses = 6

// DeviceAddr identifies a single register on a single slave on a single bus.
type DeviceAddr struct {
	Bus      uint8
	Slave    uint8
	Function uint8
	Address  uint16
}

// PeriodicRead is one entry in a bus's fixed, array-scanned poll list.
type PeriodicRead struct {
	Device   DeviceAddr
	Interval time.Duration
	NextRun  time.Time
	LastData uint16
}

// CommandType distinguishes the host-originated and host-bound variants of
// Command. Reply and change variants always travel bus engine -> host
// endpoint; Read and Write always travel host endpoint -> bus engine.
type CommandType uint8

const (
	CmdRead CommandType = iota
	CmdWrite
	CmdConfigBusReply
	CmdReadReply
	CmdWriteReply
	CmdPeriodicChange
)

// Command is the in-process analogue of the wire m_command union: a single
// struct wide enough to carry every variant, with only the fields relevant
// to Type populated.
type Command struct {
	Type   CommandType
	Seq    uint8
	Device DeviceAddr

	// CmdWrite
	WriteData uint16

	// CmdWriteReply
	Done bool

	// CmdReadReply
	ReadData uint16

	// CmdPeriodicChange
	ChangeData uint16
	ChangeMask uint16

	// CmdConfigBusReply
	ConfigBus         uint8
	AlreadyConfigured bool
	InvalidBus        bool
}

// BusConfig is the host-supplied configuration for one RS-485 bus: its baud
// rate and the fixed table of registers the bus engine polls on a timer.
type BusConfig struct {
	Bus              uint8
	Baudrate         uint32
	PeriodicInterval time.Duration
	Reads            []DeviceAddr
}

// ModbusFrame is a single decoded or to-be-encoded Modbus RTU frame.
type ModbusFrame struct {
	Slave        uint8
	FunctionCode uint8
	HasAddress   bool
	Address      uint16
	Data         [8]byte
	DataSize     uint8
	CRC          uint16
}
