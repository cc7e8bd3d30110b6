package hostproto

import (
	"encoding/binary"
	"fmt"

	"github.com/jangala-dev/rs485-hostbridge/internal/protocol"
)

// EncodeCommandRead encodes a COMMAND_READ payload: seq, device.
func EncodeCommandRead(seq uint8, dev protocol.DeviceAddr) []byte {
	buf := make([]byte, 1+DeviceAddrSize)
	buf[0] = seq
	PutDeviceAddr(buf[1:], dev.Bus, dev.Slave, dev.Function, dev.Address)
	return buf
}

// DecodeCommandRead decodes a COMMAND_READ payload into a Command.
func DecodeCommandRead(payload []byte) (protocol.Command, error) {
	if len(payload) != 1+DeviceAddrSize {
		return protocol.Command{}, fmt.Errorf("hostproto: short COMMAND_READ payload (%d bytes)", len(payload))
	}
	cmd := protocol.Command{Type: protocol.CmdRead, Seq: payload[0]}
	cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address = GetDeviceAddr(payload[1:])
	return cmd, nil
}

// EncodeCommandReadReply encodes a COMMAND_READ_REPLY payload.
func EncodeCommandReadReply(cmd protocol.Command) []byte {
	buf := make([]byte, 1+DeviceAddrSize+3)
	buf[0] = cmd.Seq
	PutDeviceAddr(buf[1:], cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address)
	off := 1 + DeviceAddrSize
	buf[off] = boolByte(cmd.Done)
	binary.LittleEndian.PutUint16(buf[off+1:], cmd.ReadData)
	return buf
}

// DecodeCommandReadReply decodes a COMMAND_READ_REPLY payload.
func DecodeCommandReadReply(payload []byte) (protocol.Command, error) {
	const want = 1 + DeviceAddrSize + 3
	if len(payload) != want {
		return protocol.Command{}, fmt.Errorf("hostproto: short COMMAND_READ_REPLY payload (%d bytes)", len(payload))
	}
	cmd := protocol.Command{Type: protocol.CmdReadReply, Seq: payload[0]}
	cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address = GetDeviceAddr(payload[1:])
	off := 1 + DeviceAddrSize
	cmd.Done = payload[off] != 0
	cmd.ReadData = binary.LittleEndian.Uint16(payload[off+1:])
	return cmd, nil
}

// EncodeCommandWrite encodes a COMMAND_WRITE payload.
func EncodeCommandWrite(seq uint8, dev protocol.DeviceAddr, data uint16) []byte {
	buf := make([]byte, 1+DeviceAddrSize+2)
	buf[0] = seq
	PutDeviceAddr(buf[1:], dev.Bus, dev.Slave, dev.Function, dev.Address)
	binary.LittleEndian.PutUint16(buf[1+DeviceAddrSize:], data)
	return buf
}

// DecodeCommandWrite decodes a COMMAND_WRITE payload into a Command.
func DecodeCommandWrite(payload []byte) (protocol.Command, error) {
	const want = 1 + DeviceAddrSize + 2
	if len(payload) != want {
		return protocol.Command{}, fmt.Errorf("hostproto: short COMMAND_WRITE payload (%d bytes)", len(payload))
	}
	cmd := protocol.Command{Type: protocol.CmdWrite, Seq: payload[0]}
	cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address = GetDeviceAddr(payload[1:])
	cmd.WriteData = binary.LittleEndian.Uint16(payload[1+DeviceAddrSize:])
	return cmd, nil
}

// EncodeCommandWriteReply encodes a COMMAND_WRITE_REPLY payload.
func EncodeCommandWriteReply(cmd protocol.Command) []byte {
	buf := make([]byte, 1+DeviceAddrSize+1)
	buf[0] = cmd.Seq
	PutDeviceAddr(buf[1:], cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address)
	buf[1+DeviceAddrSize] = boolByte(cmd.Done)
	return buf
}

// DecodeCommandWriteReply decodes a COMMAND_WRITE_REPLY payload.
func DecodeCommandWriteReply(payload []byte) (protocol.Command, error) {
	const want = 1 + DeviceAddrSize + 1
	if len(payload) != want {
		return protocol.Command{}, fmt.Errorf("hostproto: short COMMAND_WRITE_REPLY payload (%d bytes)", len(payload))
	}
	cmd := protocol.Command{Type: protocol.CmdWriteReply, Seq: payload[0]}
	cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address = GetDeviceAddr(payload[1:])
	cmd.Done = payload[1+DeviceAddrSize] != 0
	return cmd, nil
}

// EncodePeriodicReadReply encodes a PERIODIC_READ_REPLY payload: an
// unsolicited change notification, so it carries no seq.
func EncodePeriodicReadReply(cmd protocol.Command) []byte {
	buf := make([]byte, DeviceAddrSize+4)
	PutDeviceAddr(buf, cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address)
	binary.LittleEndian.PutUint16(buf[DeviceAddrSize:], cmd.ChangeData)
	binary.LittleEndian.PutUint16(buf[DeviceAddrSize+2:], cmd.ChangeMask)
	return buf
}

// DecodePeriodicReadReply decodes a PERIODIC_READ_REPLY payload.
func DecodePeriodicReadReply(payload []byte) (protocol.Command, error) {
	const want = DeviceAddrSize + 4
	if len(payload) != want {
		return protocol.Command{}, fmt.Errorf("hostproto: short PERIODIC_READ_REPLY payload (%d bytes)", len(payload))
	}
	cmd := protocol.Command{Type: protocol.CmdPeriodicChange}
	cmd.Device.Bus, cmd.Device.Slave, cmd.Device.Function, cmd.Device.Address = GetDeviceAddr(payload)
	cmd.ChangeData = binary.LittleEndian.Uint16(payload[DeviceAddrSize:])
	cmd.ChangeMask = binary.LittleEndian.Uint16(payload[DeviceAddrSize+2:])
	return cmd, nil
}

// EncodeConfigBusReply encodes a CONFIG_BUS_REPLY payload.
func EncodeConfigBusReply(cmd protocol.Command) []byte {
	buf := make([]byte, 4)
	buf[0] = cmd.Seq
	buf[1] = cmd.ConfigBus
	buf[2] = boolByte(cmd.AlreadyConfigured)
	buf[3] = boolByte(cmd.InvalidBus)
	return buf
}

// DecodeConfigBusReply decodes a CONFIG_BUS_REPLY payload.
func DecodeConfigBusReply(payload []byte) (protocol.Command, error) {
	if len(payload) != 4 {
		return protocol.Command{}, fmt.Errorf("hostproto: short CONFIG_BUS_REPLY payload (%d bytes)", len(payload))
	}
	return protocol.Command{
		Type:              protocol.CmdConfigBusReply,
		Seq:               payload[0],
		ConfigBus:         payload[1],
		AlreadyConfigured: payload[2] != 0,
		InvalidBus:        payload[3] != 0,
	}, nil
}
