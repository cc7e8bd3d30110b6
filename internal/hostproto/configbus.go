package hostproto

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/internal/protocol"
)

const configBusHeaderSize = 1 + 4 + 4 + 1 // bus, baudrate, interval_ms, count

// EncodeConfigBus encodes a CONFIG_BUS payload for cfg. Returns nil if the
// read table is wider than a single frame's payload can carry.
func EncodeConfigBus(cfg protocol.BusConfig) []byte {
	n := len(cfg.Reads)
	buf := make([]byte, configBusHeaderSize+n*DeviceAddrSize)
	buf[0] = cfg.Bus
	binary.LittleEndian.PutUint32(buf[1:], cfg.Baudrate)
	binary.LittleEndian.PutUint32(buf[5:], uint32(cfg.PeriodicInterval/time.Millisecond))
	buf[9] = uint8(n)
	off := configBusHeaderSize
	for _, d := range cfg.Reads {
		PutDeviceAddr(buf[off:], d.Bus, d.Slave, d.Function, d.Address)
		off += DeviceAddrSize
	}
	return buf
}

// DecodeConfigBus decodes a CONFIG_BUS payload into a BusConfig.
func DecodeConfigBus(payload []byte) (protocol.BusConfig, error) {
	if len(payload) < configBusHeaderSize {
		return protocol.BusConfig{}, fmt.Errorf("hostproto: short CONFIG_BUS payload (%d bytes)", len(payload))
	}
	count := int(payload[9])
	want := configBusHeaderSize + count*DeviceAddrSize
	if len(payload) != want {
		return protocol.BusConfig{}, fmt.Errorf("hostproto: CONFIG_BUS payload length %d, want %d for %d reads", len(payload), want, count)
	}
	cfg := protocol.BusConfig{
		Bus:              payload[0],
		Baudrate:         binary.LittleEndian.Uint32(payload[1:]),
		PeriodicInterval: time.Duration(binary.LittleEndian.Uint32(payload[5:])) * time.Millisecond,
		Reads:            make([]protocol.DeviceAddr, count),
	}
	off := configBusHeaderSize
	for i := range cfg.Reads {
		var d protocol.DeviceAddr
		d.Bus, d.Slave, d.Function, d.Address = GetDeviceAddr(payload[off:])
		cfg.Reads[i] = d
		off += DeviceAddrSize
	}
	return cfg, nil
}
