package modbus

// Function codes understood by the encoder and decoder. Only the subset the
// bridge actually drives is implemented; anything else reaches the decoder
// as an invalid function code.
const (
	FuncReadCoils              uint8 = 0x01
	FuncReadDiscreteInputs     uint8 = 0x02
	FuncReadHoldingRegisters   uint8 = 0x03
	FuncReadInputRegisters     uint8 = 0x04
	FuncWriteSingleCoil        uint8 = 0x05
	FuncWriteSingleRegister    uint8 = 0x06
	FuncWriteMultipleCoils     uint8 = 0x0F
	FuncWriteMultipleRegisters uint8 = 0x10
)

func isReadFunc(f uint8) bool {
	switch f {
	case FuncReadCoils, FuncReadDiscreteInputs, FuncReadHoldingRegisters, FuncReadInputRegisters:
		return true
	}
	return false
}

// ReadFrame encodes a single-item read request (quantity fixed at one coil
// or register) into buf and returns the number of bytes written.
func ReadFrame(function, slave uint8, address uint16, buf []byte) int {
	if len(buf) < 8 || !isReadFunc(function) {
		return 0
	}
	buf[0] = slave
	buf[1] = function
	buf[2] = byte(address >> 8)
	buf[3] = byte(address)
	buf[4] = 0x00
	buf[5] = 0x01 // quantity = 1
	appendCRC(buf, 6)
	return 8
}

// WriteFrame encodes a single-value write request into buf and returns the
// number of bytes written. Only the function codes this bridge ever
// produces on the wire are supported (spec §6): FuncWriteSingleCoil maps
// any nonzero value to the Modbus coil sentinel 0xFF00 (0x0000 otherwise);
// FuncWriteMultipleCoils encodes that same single coil using the
// write-multiple-coils function (quantity 1, byte count 1); and
// FuncWriteMultipleRegisters is encoded as a one-register write (quantity
// 1, byte count 2).
func WriteFrame(function, slave uint8, address, value uint16, buf []byte) int {
	switch function {
	case FuncWriteSingleCoil:
		if len(buf) < 8 {
			return 0
		}
		coil := uint16(0x0000)
		if value != 0 {
			coil = 0xFF00
		}
		buf[0] = slave
		buf[1] = function
		buf[2] = byte(address >> 8)
		buf[3] = byte(address)
		buf[4] = byte(coil >> 8)
		buf[5] = byte(coil)
		appendCRC(buf, 6)
		return 8
	case FuncWriteMultipleCoils:
		if len(buf) < 10 {
			return 0
		}
		coil := byte(0x00)
		if value != 0 {
			coil = 0xFF
		}
		buf[0] = slave
		buf[1] = function
		buf[2] = byte(address >> 8)
		buf[3] = byte(address)
		buf[4] = 0x00
		buf[5] = 0x01 // quantity = 1 coil
		buf[6] = 0x01 // byte count
		buf[7] = coil
		appendCRC(buf, 8)
		return 10
	case FuncWriteMultipleRegisters:
		if len(buf) < 11 {
			return 0
		}
		buf[0] = slave
		buf[1] = function
		buf[2] = byte(address >> 8)
		buf[3] = byte(address)
		buf[4] = 0x00
		buf[5] = 0x01 // quantity = 1
		buf[6] = 0x02 // byte count
		buf[7] = byte(value >> 8)
		buf[8] = byte(value)
		appendCRC(buf, 9)
		return 11
	default:
		return 0
	}
}

// appendCRC computes CRC16 over buf[:n] and appends it low-byte-first at
// buf[n:n+2].
func appendCRC(buf []byte, n int) {
	crc := CRC16(buf[:n])
	buf[n] = byte(crc)
	buf[n+1] = byte(crc >> 8)
}
