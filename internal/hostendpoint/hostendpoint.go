// Package hostendpoint is the single task that owns the host-facing link:
// it decodes framed messages arriving from the host into bus commands for
// the right bus engine, and encodes bus-engine replies and periodic changes
// back out as framed messages, interleaving cleanly because every emission
// goes through one mutex-guarded writer.
package hostendpoint

import (
	"context"
	"sync"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/bus"
	"github.com/jangala-dev/rs485-hostbridge/internal/framing"
	"github.com/jangala-dev/rs485-hostbridge/internal/hostproto"
	"github.com/jangala-dev/rs485-hostbridge/internal/protocol"
	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

const (
	// HeartbeatInterval matches the original firmware's host liveness beat.
	HeartbeatInterval = time.Second

	readPollInterval = 250 * time.Microsecond
	maxFrame         = 3 + 2 + framing.MaxPayload + 2 // sync + id/len + payload + crc, generous
)

// Service is the host endpoint task.
type Service struct {
	port uarttransport.Port
	b    *bus.Bus

	// OnReset is invoked when the host sends PICO_RESET. Supplied by the
	// orchestrator, since only it knows how to actually restart the board.
	OnReset func()

	wrMu  sync.Mutex
	wrBuf [maxFrame]byte
}

// New creates a host endpoint driving port and bridging to b.
func New(port uarttransport.Port, b *bus.Bus) *Service {
	return &Service{port: port, b: b}
}

// Run starts the reader, the change/reply dispatcher and the heartbeat
// ticker, and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	conn := s.b.NewConnection("host-endpoint")
	defer conn.Disconnect()

	changes := conn.Subscribe(bus.T("bus", "+", "change"))
	replies := conn.Subscribe(bus.T("bus", "+", "reply"))

	s.emit(hostproto.MsgPicoReady, nil)

	hb := time.NewTicker(HeartbeatInterval)
	defer hb.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.readLoop(ctx, conn)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hb.C:
			s.emit(hostproto.MsgHeartbeat, nil)
		case msg, ok := <-changes.Channel():
			if !ok {
				return
			}
			s.emitCommand(msg)
		case msg, ok := <-replies.Channel():
			if !ok {
				return
			}
			s.emitCommand(msg)
		}
	}
}

func (s *Service) emitCommand(msg *bus.Message) {
	cmd, ok := msg.Payload.(protocol.Command)
	if !ok {
		return
	}
	switch cmd.Type {
	case protocol.CmdConfigBusReply:
		s.emit(hostproto.MsgConfigBusReply, hostproto.EncodeConfigBusReply(cmd))
	case protocol.CmdReadReply:
		s.emit(hostproto.MsgCommandReadReply, hostproto.EncodeCommandReadReply(cmd))
	case protocol.CmdWriteReply:
		s.emit(hostproto.MsgCommandWriteReply, hostproto.EncodeCommandWriteReply(cmd))
	case protocol.CmdPeriodicChange:
		s.emit(hostproto.MsgPeriodicReadReply, hostproto.EncodePeriodicReadReply(cmd))
	}
}

func (s *Service) emit(id uint8, payload []byte) {
	s.wrMu.Lock()
	defer s.wrMu.Unlock()
	n := framing.Encode(id, payload, s.wrBuf[:])
	if n == 0 {
		return
	}
	off := 0
	for off < n {
		w := s.port.WriteBytes(s.wrBuf[off:n])
		if w == 0 {
			time.Sleep(readPollInterval)
			continue
		}
		off += w
	}
}

func (s *Service) readLoop(ctx context.Context, conn *bus.Connection) {
	var dec framing.Decoder
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		b, ok := s.port.ReadByte()
		if !ok {
			time.Sleep(readPollInterval)
			continue
		}
		switch dec.Step(b) {
		case framing.FrameComplete:
			s.handleFrame(conn, dec.ID(), dec.Payload())
		case framing.FrameError:
			dec.Reset()
		}
	}
}

func (s *Service) handleFrame(conn *bus.Connection, id uint8, payload []byte) {
	switch id {
	case hostproto.MsgConfigBus:
		cfg, err := hostproto.DecodeConfigBus(payload)
		if err != nil {
			return
		}
		if cfg.Bus >= protocol.NumBuses {
			// No engine is bound to an out-of-range id, so nothing would
			// ever answer this on the bus-reply topic: the endpoint must
			// reply directly or the host never hears back at all.
			s.emit(hostproto.MsgConfigBusReply, hostproto.EncodeConfigBusReply(protocol.Command{
				Type: protocol.CmdConfigBusReply, ConfigBus: cfg.Bus, InvalidBus: true,
			}))
			return
		}
		conn.Publish(conn.NewMessage(bus.T("bus", cfg.Bus, "command"), cfg, false))

	case hostproto.MsgCommandRead:
		cmd, err := hostproto.DecodeCommandRead(payload)
		if err != nil {
			return
		}
		conn.Publish(conn.NewMessage(bus.T("bus", cmd.Device.Bus, "command"), cmd, false))

	case hostproto.MsgCommandWrite:
		cmd, err := hostproto.DecodeCommandWrite(payload)
		if err != nil {
			return
		}
		conn.Publish(conn.NewMessage(bus.T("bus", cmd.Device.Bus, "command"), cmd, false))

	case hostproto.MsgPicoReset:
		if s.OnReset != nil {
			s.OnReset()
		}
	}
}
