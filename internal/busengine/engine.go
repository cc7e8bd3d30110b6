// Package busengine runs one Modbus RTU master per RS-485 bus: a periodic
// poll of a fixed read table plus host-originated read/write commands,
// multiplexed onto a single uarttransport.Port because the bus is
// half-duplex and only one transaction can be outstanding at a time.
package busengine

import (
	"context"
	"fmt"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/bus"
	"github.com/jangala-dev/rs485-hostbridge/errcode"
	"github.com/jangala-dev/rs485-hostbridge/internal/modbus"
	"github.com/jangala-dev/rs485-hostbridge/internal/protocol"
	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
	"github.com/jangala-dev/rs485-hostbridge/x/fmtx"
)

const (
	// writeReadDelay paces the turnaround between a request going out and
	// the engine starting to listen, covering the slave's driver-enable
	// switch on a half-duplex line. Matches the original firmware's
	// BUS_DELAY_WRITE_READ.
	writeReadDelay = 3 * time.Millisecond

	defaultResponseTimeout = 20 * time.Millisecond
	pollInterval           = 1 * time.Millisecond
	scanInterval           = 1 * time.Millisecond

	// busDelayTimeoutMsg matches the original firmware's
	// BUS_DELAY_TIMEOUT_MSG: a bus stuck timing out on every poll logs at
	// most once per this interval instead of once per poll.
	busDelayTimeoutMsg = 5 * time.Second
)

// SetBaud reconfigures the underlying UART's baud rate. Supplied by the
// platform layer; nil on ports that do not support it (e.g. a host
// simulation fixed at one rate).
type SetBaud func(baud uint32) error

// Engine is one bus's master: it owns the port exclusively and serialises
// every transaction, whether it is a periodic poll or a host command.
type Engine struct {
	id      uint8
	port    uarttransport.Port
	b       *bus.Bus
	setBaud SetBaud

	writeReadDelay  time.Duration
	responseTimeout time.Duration

	configured bool
	reads      []protocol.PeriodicRead

	decoder        modbus.Decoder
	lastTimeoutLog time.Time

	conn   *bus.Connection
	cmdSub *bus.Subscription
}

// New creates a bus engine for bus id, driving port, publishing to and
// receiving commands from b.
func New(id uint8, port uarttransport.Port, b *bus.Bus, setBaud SetBaud) *Engine {
	e := &Engine{
		id:              id,
		port:            port,
		b:               b,
		setBaud:         setBaud,
		writeReadDelay:  writeReadDelay,
		responseTimeout: defaultResponseTimeout,
	}
	// Subscribe here rather than in Run, so a command published between New
	// and the Run goroutine starting is queued instead of lost.
	e.conn = b.NewConnection(fmt.Sprintf("bus-%d", id))
	e.cmdSub = e.conn.Subscribe(e.commandTopic())
	return e
}

func (e *Engine) commandTopic() bus.Topic { return bus.T("bus", e.id, "command") }
func (e *Engine) replyTopic() bus.Topic   { return bus.T("bus", e.id, "reply") }
func (e *Engine) changeTopic() bus.Topic  { return bus.T("bus", e.id, "change") }

// Run drives the bus until ctx is cancelled: a timer scans the periodic
// read table for due entries, and a subscription carries host commands.
// Both share the same goroutine because the bus itself only supports one
// in-flight transaction at a time.
func (e *Engine) Run(ctx context.Context) {
	conn := e.conn
	defer conn.Disconnect()

	cmdSub := e.cmdSub

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-cmdSub.Channel():
			if !ok {
				return
			}
			e.handleMessage(conn, msg)
		case <-ticker.C:
			e.scanPeriodic(conn)
		}
	}
}

func (e *Engine) handleMessage(conn *bus.Connection, msg *bus.Message) {
	switch p := msg.Payload.(type) {
	case protocol.BusConfig:
		e.applyConfig(conn, p)
	case protocol.Command:
		switch p.Type {
		case protocol.CmdRead:
			e.handleRead(conn, p)
		case protocol.CmdWrite:
			e.handleWrite(conn, p)
		}
	}
}

func (e *Engine) applyConfig(conn *bus.Connection, cfg protocol.BusConfig) {
	reply := protocol.Command{Type: protocol.CmdConfigBusReply, ConfigBus: e.id}

	if cfg.Bus != e.id {
		reply.InvalidBus = true
		conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
		return
	}
	if e.configured {
		reply.AlreadyConfigured = true
		conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
		return
	}

	if e.setBaud != nil {
		if err := e.setBaud(cfg.Baudrate); err != nil {
			reply.InvalidBus = true
			conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
			return
		}
	}

	now := time.Now()
	reads := make([]protocol.PeriodicRead, len(cfg.Reads))
	for i, dev := range cfg.Reads {
		reads[i] = protocol.PeriodicRead{Device: dev, Interval: cfg.PeriodicInterval, NextRun: now}
	}
	e.reads = reads
	e.configured = true

	conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
}

func (e *Engine) handleRead(conn *bus.Connection, cmd protocol.Command) {
	reply := protocol.Command{
		Type:   protocol.CmdReadReply,
		Seq:    cmd.Seq,
		Device: cmd.Device,
	}
	if !e.configured {
		conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
		return
	}
	data, err := e.transact(cmd.Device.Function, cmd.Device.Slave, cmd.Device.Address, 0, false)
	reply.Done = err == nil
	reply.ReadData = data
	conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
}

func (e *Engine) handleWrite(conn *bus.Connection, cmd protocol.Command) {
	reply := protocol.Command{
		Type:   protocol.CmdWriteReply,
		Seq:    cmd.Seq,
		Device: cmd.Device,
	}
	if !e.configured {
		conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
		return
	}
	_, err := e.transact(cmd.Device.Function, cmd.Device.Slave, cmd.Device.Address, cmd.WriteData, true)
	reply.Done = err == nil
	conn.Publish(conn.NewMessage(e.replyTopic(), reply, false))
}

// scanPeriodic advances one due entry of the read table per tick, keeping a
// slow or stalled slave from starving host commands on the same bus.
func (e *Engine) scanPeriodic(conn *bus.Connection) {
	if !e.configured {
		return
	}
	now := time.Now()
	for i := range e.reads {
		r := &e.reads[i]
		if now.Before(r.NextRun) {
			continue
		}
		r.NextRun = now.Add(r.Interval)

		data, err := e.transact(r.Device.Function, r.Device.Slave, r.Device.Address, 0, false)
		if err != nil {
			break
		}

		// last_data starts at zero, so the first poll of a nonzero register
		// is always reported as a change; an identically-zero first reading
		// is not, matching the host's expectation that it learns initial
		// nonzero state on startup.
		mask := data ^ r.LastData
		r.LastData = data
		if mask == 0 {
			break
		}

		change := protocol.Command{
			Type:       protocol.CmdPeriodicChange,
			Device:     r.Device,
			ChangeData: data,
			ChangeMask: mask,
		}
		conn.Publish(conn.NewMessage(e.changeTopic(), change, false))
		break
	}
}

// transact runs one request/response exchange: write the request, wait the
// turnaround delay, then feed received bytes to the decoder until a frame
// completes or responseTimeout elapses.
func (e *Engine) transact(function, slave uint8, address, writeValue uint16, isWrite bool) (uint16, error) {
	var buf [16]byte
	var n int
	if isWrite {
		n = modbus.WriteFrame(function, slave, address, writeValue, buf[:])
	} else {
		n = modbus.ReadFrame(function, slave, address, buf[:])
	}
	if n == 0 {
		return 0, errcode.InvalidFunction
	}

	e.port.RXFlush()
	if w := e.port.WriteBytes(buf[:n]); w != n {
		return 0, errcode.QueueFull
	}

	time.Sleep(e.writeReadDelay)

	e.decoder.Reset()
	deadline := time.Now().Add(e.responseTimeout)
	for {
		b, ok := e.port.ReadByte()
		if !ok {
			if time.Now().After(deadline) {
				e.logTimeout(slave, address)
				return 0, errcode.Timeout
			}
			time.Sleep(pollInterval)
			continue
		}

		switch e.decoder.Step(b) {
		case modbus.Complete:
			frame := e.decoder.Frame()
			if frame.Slave != slave || frame.FunctionCode != function {
				e.logError(errcode.FunctionMismatch, slave, address, "received frame with wrong function code")
				return 0, errcode.FunctionMismatch
			}
			e.lastTimeoutLog = time.Time{}
			if isWrite {
				return writeValue, nil
			}
			return uint16(frame.Data[0])<<8 | uint16(frame.Data[1]), nil
		case modbus.DecodeError:
			e.logError(errcode.CRCMismatch, slave, address, "error parsing frame")
			return 0, errcode.CRCMismatch
		}
	}
}

// logTimeout logs a bus response timeout, throttled to once every
// busDelayTimeoutMsg so a bus stuck timing out on every poll does not flood
// the log. A successful transaction clears the throttle, so the next
// timeout after a run of successes always logs immediately.
func (e *Engine) logTimeout(slave uint8, address uint16) {
	now := time.Now()
	if !e.lastTimeoutLog.IsZero() && now.Before(e.lastTimeoutLog.Add(busDelayTimeoutMsg)) {
		return
	}
	e.lastTimeoutLog = now
	fmtx.Printf("bus %d: timeout slave=%d addr=%d\n", e.id, slave, address)
}

// logError logs a non-timeout transaction failure. Unlike a timeout these
// are not throttled: each is a distinct protocol violation worth seeing.
// err is passed through errcode.Of so a caller holding a plain error from
// a lower layer can log it the same way as a Code.
func (e *Engine) logError(err error, slave uint8, address uint16, msg string) {
	fmtx.Printf("bus %d: %s slave=%d addr=%d code=%s\n", e.id, msg, slave, address, errcode.Of(err))
}
