package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/internal/framing"
	"github.com/jangala-dev/rs485-hostbridge/internal/hostproto"
	"github.com/jangala-dev/rs485-hostbridge/internal/protocol"
	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

const maxFrame = 3 + 2 + framing.MaxPayload + 2

// HostClient speaks the framed host wire protocol over a port, standing in
// for the real host so a test or bring-up harness can drive
// internal/hostendpoint end to end.
type HostClient struct {
	port uarttransport.Port
	buf  [maxFrame]byte
}

// NewHostClient wraps port.
func NewHostClient(port uarttransport.Port) *HostClient {
	return &HostClient{port: port}
}

func (c *HostClient) send(id uint8, payload []byte) {
	n := framing.Encode(id, payload, c.buf[:])
	if n == 0 {
		return
	}
	off := 0
	for off < n {
		w := c.port.WriteBytes(c.buf[off:n])
		if w == 0 {
			time.Sleep(pollInterval)
			continue
		}
		off += w
	}
}

// ConfigBus sends a CONFIG_BUS request.
func (c *HostClient) ConfigBus(cfg protocol.BusConfig) {
	c.send(hostproto.MsgConfigBus, hostproto.EncodeConfigBus(cfg))
}

// Read sends a COMMAND_READ request.
func (c *HostClient) Read(seq uint8, dev protocol.DeviceAddr) {
	c.send(hostproto.MsgCommandRead, hostproto.EncodeCommandRead(seq, dev))
}

// Write sends a COMMAND_WRITE request.
func (c *HostClient) Write(seq uint8, dev protocol.DeviceAddr, data uint16) {
	c.send(hostproto.MsgCommandWrite, hostproto.EncodeCommandWrite(seq, dev, data))
}

// Reset sends PICO_RESET.
func (c *HostClient) Reset() {
	c.send(hostproto.MsgPicoReset, nil)
}

// WaitFor reads frames until one with the given message id arrives,
// decoded into a protocol.Command by the matching hostproto Decode
// function, or ctx is cancelled.
func (c *HostClient) WaitFor(ctx context.Context, id uint8) (protocol.Command, error) {
	var dec framing.Decoder
	for {
		select {
		case <-ctx.Done():
			return protocol.Command{}, ctx.Err()
		default:
		}
		b, ok := c.port.ReadByte()
		if !ok {
			time.Sleep(pollInterval)
			continue
		}
		res := dec.Step(b)
		if res != framing.FrameComplete {
			if res == framing.FrameError {
				dec.Reset()
			}
			continue
		}
		if dec.ID() != id {
			continue
		}
		return decodeByID(id, dec.Payload())
	}
}

func decodeByID(id uint8, payload []byte) (protocol.Command, error) {
	switch id {
	case hostproto.MsgConfigBusReply:
		return hostproto.DecodeConfigBusReply(payload)
	case hostproto.MsgCommandReadReply:
		return hostproto.DecodeCommandReadReply(payload)
	case hostproto.MsgCommandWriteReply:
		return hostproto.DecodeCommandWriteReply(payload)
	case hostproto.MsgPeriodicReadReply:
		return hostproto.DecodePeriodicReadReply(payload)
	case hostproto.MsgPicoReady, hostproto.MsgHeartbeat:
		return protocol.Command{}, nil
	default:
		return protocol.Command{}, fmt.Errorf("simulate: no decoder for message id %#x", id)
	}
}
