package modbus

import "github.com/jangala-dev/rs485-hostbridge/internal/protocol"

// DecodeResult is the outcome of feeding one byte to a Decoder.
type DecodeResult uint8

const (
	Incomplete DecodeResult = iota
	Complete
	DecodeError
)

type decState uint8

const (
	stWaitSlave decState = iota
	stWaitFunction
	stWaitLength
	stWaitData
	stWaitCRC1
	stWaitCRC2
)

// Decoder is a byte-fed Modbus RTU response parser. It holds no timing
// state of its own; callers are responsible for applying an inter-byte
// timeout and calling Reset between frames.
type Decoder struct {
	state       decState
	crc         uint16
	frame       protocol.ModbusFrame
	dataIdx     uint8
	needLen     uint8
	addressEcho bool
	crcLow      byte
}

// Reset prepares the decoder to parse a new frame from byte zero.
func (d *Decoder) Reset() {
	d.state = stWaitSlave
	d.crc = CRCInit
	d.frame = protocol.ModbusFrame{}
	d.dataIdx = 0
	d.needLen = 0
	d.addressEcho = false
}

// Frame returns the frame assembled by the most recent Complete result.
// Its contents are undefined until Step has returned Complete.
func (d *Decoder) Frame() *protocol.ModbusFrame { return &d.frame }

func (d *Decoder) accumulate(b byte) { d.crc = CRCStep(d.crc, b) }

// fail resets the parser and reports DecodeError, per the spec's "ERROR
// resets the parser": a garbled frame must not wedge the decoder against
// the next one.
func (d *Decoder) fail() DecodeResult {
	d.Reset()
	return DecodeError
}

// Step feeds one received byte into the decoder and reports whether the
// frame is still incomplete, now complete (CRC verified), or invalid.
func (d *Decoder) Step(b byte) DecodeResult {
	switch d.state {
	case stWaitSlave:
		if b > 247 {
			return d.fail()
		}
		d.frame.Slave = b
		d.accumulate(b)
		d.state = stWaitFunction
		return Incomplete

	case stWaitFunction:
		d.frame.FunctionCode = b
		d.accumulate(b)
		switch b {
		case FuncReadCoils, FuncReadDiscreteInputs, FuncReadHoldingRegisters, FuncReadInputRegisters:
			d.addressEcho = false
			d.state = stWaitLength
		case FuncWriteSingleCoil, FuncWriteSingleRegister, FuncWriteMultipleCoils, FuncWriteMultipleRegisters:
			d.addressEcho = true
			d.frame.HasAddress = true
			d.needLen = 4
			d.dataIdx = 0
			d.state = stWaitData
		default:
			return d.fail()
		}
		return Incomplete

	case stWaitLength:
		d.accumulate(b)
		if b == 0 || int(b) > len(d.frame.Data) {
			return d.fail()
		}
		d.frame.DataSize = b
		d.needLen = b
		d.dataIdx = 0
		d.state = stWaitData
		return Incomplete

	case stWaitData:
		d.accumulate(b)
		if d.addressEcho {
			switch d.dataIdx {
			case 0:
				d.frame.Address = uint16(b) << 8
			case 1:
				d.frame.Address |= uint16(b)
			case 2:
				d.frame.Data[0] = b
			case 3:
				d.frame.Data[1] = b
				d.frame.DataSize = 2
			}
		} else {
			d.frame.Data[d.dataIdx] = b
		}
		d.dataIdx++
		if d.dataIdx >= d.needLen {
			d.state = stWaitCRC1
		}
		return Incomplete

	case stWaitCRC1:
		d.crcLow = b
		d.state = stWaitCRC2
		return Incomplete

	case stWaitCRC2:
		got := uint16(b)<<8 | uint16(d.crcLow)
		if got != d.crc {
			return d.fail()
		}
		d.frame.CRC = d.crc
		return Complete

	default:
		return d.fail()
	}
}
