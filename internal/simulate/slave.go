// Package simulate provides host-buildable stand-ins for the hardware this
// bridge talks to: a fake Modbus RTU slave sitting on a bus port, and a
// fake host client speaking the framed wire protocol on the host port.
// Neither is used by the production orchestrator; they exist so tests and
// the cmd/boardtest harness can drive the real busengine/hostendpoint code
// paths without silicon, grounded on the teacher's engine_test.go fakePort
// pattern but running as a free-standing goroutine against a real
// uarttransport.Port instead of an in-memory respond callback.
package simulate

import (
	"context"
	"sync"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/internal/modbus"
	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

const pollInterval = 250 * time.Microsecond

// Slave answers the single-item read/write requests this bridge ever
// issues (spec §6): quantity is always one coil or register, so the
// request body length is fixed per function code rather than parsed from
// a byte count, unlike a general-purpose Modbus slave.
type Slave struct {
	Address uint8

	mu        sync.Mutex
	registers map[uint16]uint16
	coils     map[uint16]bool

	port uarttransport.Port
}

// NewSlave returns a slave answering as Modbus address addr on port.
func NewSlave(addr uint8, port uarttransport.Port) *Slave {
	return &Slave{
		Address:   addr,
		registers: map[uint16]uint16{},
		coils:     map[uint16]bool{},
		port:      port,
	}
}

// SetRegister seeds a holding/input register value the next read will see.
func (s *Slave) SetRegister(address uint16, value uint16) {
	s.mu.Lock()
	s.registers[address] = value
	s.mu.Unlock()
}

// SetCoil seeds a coil/discrete-input value the next read will see.
func (s *Slave) SetCoil(address uint16, on bool) {
	s.mu.Lock()
	s.coils[address] = on
	s.mu.Unlock()
}

// Register reads back the last value written by a host WRITE command,
// for a test to assert against.
func (s *Slave) Register(address uint16) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registers[address]
}

// Coil reads back the last coil state written by a host WRITE command.
func (s *Slave) Coil(address uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coils[address]
}

// Run answers requests on the slave's port until ctx is cancelled.
func (s *Slave) Run(ctx context.Context) {
	for {
		req, ok := s.readRequest(ctx)
		if !ok {
			return
		}
		if resp := s.handle(req); resp != nil {
			off := 0
			for off < len(resp) {
				n := s.port.WriteBytes(resp[off:])
				if n == 0 {
					time.Sleep(pollInterval)
					continue
				}
				off += n
			}
		}
	}
}

func (s *Slave) readByte(ctx context.Context) (byte, bool) {
	for {
		select {
		case <-ctx.Done():
			return 0, false
		default:
		}
		if b, ok := s.port.ReadByte(); ok {
			return b, true
		}
		time.Sleep(pollInterval)
	}
}

// bodyLen is the number of bytes following the function code, excluding
// the trailing CRC, for each function code this bridge's master side ever
// emits (internal/modbus.ReadFrame/WriteFrame).
func bodyLen(fn uint8) (int, bool) {
	switch fn {
	case modbus.FuncReadCoils, modbus.FuncReadDiscreteInputs,
		modbus.FuncReadHoldingRegisters, modbus.FuncReadInputRegisters:
		return 4, true // address(2) + quantity(2)
	case modbus.FuncWriteSingleCoil, modbus.FuncWriteSingleRegister:
		return 4, true // address(2) + value(2)
	case modbus.FuncWriteMultipleCoils:
		return 6, true // address(2) + quantity(2) + bytecount(1) + data(1)
	case modbus.FuncWriteMultipleRegisters:
		return 7, true // address(2) + quantity(2) + bytecount(1) + data(2)
	default:
		return 0, false
	}
}

func (s *Slave) readRequest(ctx context.Context) ([]byte, bool) {
	slave, ok := s.readByte(ctx)
	if !ok {
		return nil, false
	}
	fn, ok := s.readByte(ctx)
	if !ok {
		return nil, false
	}
	n, known := bodyLen(fn)
	if !known {
		return nil, true // garbled or unsupported; drop and resync on the next byte
	}
	buf := make([]byte, 2+n+2)
	buf[0], buf[1] = slave, fn
	for i := 0; i < n+2; i++ {
		b, ok := s.readByte(ctx)
		if !ok {
			return nil, false
		}
		buf[2+i] = b
	}
	crc := uint16(buf[len(buf)-1])<<8 | uint16(buf[len(buf)-2])
	if crc != modbus.CRC16(buf[:len(buf)-2]) {
		return nil, true // CRC mismatch; drop the frame, keep listening
	}
	if slave != s.Address {
		return nil, true // not addressed to us
	}
	return buf, true
}

func (s *Slave) handle(req []byte) []byte {
	if req == nil {
		return nil
	}
	fn := req[1]
	addr := uint16(req[2])<<8 | uint16(req[3])

	switch fn {
	case modbus.FuncReadHoldingRegisters, modbus.FuncReadInputRegisters:
		s.mu.Lock()
		v := s.registers[addr]
		s.mu.Unlock()
		buf := make([]byte, 7)
		buf[0], buf[1], buf[2] = req[0], fn, 2
		buf[3], buf[4] = byte(v>>8), byte(v)
		crc := modbus.CRC16(buf[:5])
		buf[5], buf[6] = byte(crc), byte(crc>>8)
		return buf

	case modbus.FuncReadCoils, modbus.FuncReadDiscreteInputs:
		s.mu.Lock()
		on := s.coils[addr]
		s.mu.Unlock()
		var bit byte
		if on {
			bit = 0x01
		}
		buf := make([]byte, 6)
		buf[0], buf[1], buf[2], buf[3] = req[0], fn, 1, bit
		crc := modbus.CRC16(buf[:4])
		buf[4], buf[5] = byte(crc), byte(crc>>8)
		return buf

	case modbus.FuncWriteSingleRegister:
		value := uint16(req[4])<<8 | uint16(req[5])
		s.mu.Lock()
		s.registers[addr] = value
		s.mu.Unlock()
		return append([]byte(nil), req...) // echo, per Modbus write-single semantics

	case modbus.FuncWriteSingleCoil:
		on := uint16(req[4])<<8|uint16(req[5]) == 0xFF00
		s.mu.Lock()
		s.coils[addr] = on
		s.mu.Unlock()
		return append([]byte(nil), req...)

	case modbus.FuncWriteMultipleCoils:
		on := req[7] != 0
		s.mu.Lock()
		s.coils[addr] = on
		s.mu.Unlock()
		return writeMultipleAck(req[0], fn, addr)

	case modbus.FuncWriteMultipleRegisters:
		value := uint16(req[7])<<8 | uint16(req[8])
		s.mu.Lock()
		s.registers[addr] = value
		s.mu.Unlock()
		return writeMultipleAck(req[0], fn, addr)
	}
	return nil
}

// writeMultipleAck builds the standard write-multiple-X response: slave,
// function, start address, quantity (always 1 for this bridge), CRC. No
// data payload, unlike the request.
func writeMultipleAck(slave, fn uint8, addr uint16) []byte {
	buf := make([]byte, 8)
	buf[0], buf[1] = slave, fn
	buf[2], buf[3] = byte(addr>>8), byte(addr)
	buf[4], buf[5] = 0x00, 0x01
	crc := modbus.CRC16(buf[:6])
	buf[6], buf[7] = byte(crc), byte(crc>>8)
	return buf
}
