// Package hostproto defines the message ids and wire payload layouts that
// travel between the orchestrator and the host over the framed link, and
// the little-endian marshal/unmarshal pairs for each one. There is no
// packed-struct trick here, unlike the C original: each message gets an
// explicit binary.LittleEndian encoder and decoder.
package hostproto

import (
	"encoding/binary"

	"github.com/jangala-dev/rs485-hostbridge/internal/util"
)

// Message ids, matching the original firmware's protocol.h exactly.
const (
	MsgConfigBus         uint8 = 0x01
	MsgConfigBusReply    uint8 = 0x02
	MsgPeriodicReadReply uint8 = 0x04
	MsgCommandRead       uint8 = 0x08
	MsgCommandReadReply  uint8 = 0x09
	MsgCommandWrite      uint8 = 0x0A
	MsgCommandWriteReply uint8 = 0x0B
	MsgPicoReady         uint8 = 0x3D
	MsgPicoReset         uint8 = 0x3E
	MsgHeartbeat         uint8 = 0x3F
)

// DeviceAddrSize is the wire size of an m_device: bus, slave, function (one
// byte each) followed by a little-endian register address.
const DeviceAddrSize = 5

// PutDeviceAddr writes bus, slave, function, address into buf[0:5].
func PutDeviceAddr(buf []byte, bus, slave, function uint8, address uint16) {
	buf[0] = bus
	buf[1] = slave
	buf[2] = function
	binary.LittleEndian.PutUint16(buf[3:5], address)
}

// GetDeviceAddr reads an m_device from buf[0:5].
func GetDeviceAddr(buf []byte) (bus, slave, function uint8, address uint16) {
	bus = buf[0]
	slave = buf[1]
	function = buf[2]
	address = binary.LittleEndian.Uint16(buf[3:5])
	return
}

func boolByte(b bool) byte { return byte(util.BoolToInt(b)) }
