//go:build rp2040 || rp2350

package platform

import (
	"context"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"machine"

	"github.com/jangala-dev/rs485-hostbridge/internal/registry"
	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

const (
	hostBaud = 230400
	busBaud  = 115200

	rxRingSize = 256
	txRingSize = 256
)

// hwPort backs the host link: one of the two hardware UART peripherals,
// always full-duplex, no direction-control pin.
type hwPort struct {
	*uarttransport.RingPort
	u *uartx.UART
}

// NewHostPort configures the board's host-facing hardware UART and starts
// the pump goroutines that keep the RX/TX rings moving.
func NewHostPort(ctx context.Context) uarttransport.Port {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{})
	u.SetBaudRate(hostBaud)
	_ = u.SetFormat(8, 1, uartx.ParityNone)

	p := &hwPort{RingPort: uarttransport.NewRingPort(rxRingSize, txRingSize), u: u}
	go p.pumpRX(ctx)
	go p.pumpTX(ctx)
	return p
}

func (p *hwPort) pumpRX(ctx context.Context) {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.u.Readable():
		}
		n, err := p.u.RecvSomeContext(ctx, buf)
		if err != nil || n == 0 {
			continue
		}
		if w := p.RX.TryWriteFrom(buf[:n]); w < n {
			p.SetOverrun()
		}
	}
}

func (p *hwPort) pumpTX(ctx context.Context) {
	buf := make([]byte, 64)
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		for {
			n := p.TX.TryReadInto(buf)
			if n == 0 {
				break
			}
			_, _ = p.u.Write(buf[:n])
		}
	}
}

// pioPort backs one of the six RS-485 channels: a soft UART synthesized on
// a single PIO state machine, time-shared between receiving and
// transmitting the way the bus itself is (RS-485 is inherently half-duplex,
// so a channel is never doing both at once), plus a GPIO direction-control
// pin asserted for the duration of each transmission. This is what lets six
// channels fit in the RP2040's eight state machines: one SM per channel
// rather than a dedicated RX SM and a dedicated TX SM each.
type pioPort struct {
	*uarttransport.RingPort
	u      *uartx.UART
	dirPin machine.Pin
}

// PIOChannel describes one RS-485 channel's fixed pin wiring.
type PIOChannel struct {
	Index        int
	RXPin, TXPin machine.Pin
	DirPin       machine.Pin
	PIO          machine.PIO
	SM           uint8
}

// NewBusPort claims the channel's state machine, configures its soft UART
// at the bus default baud rate and starts the pump goroutines. It panics if
// the state machine is already claimed: that is a board-wiring-table bug
// caught once at startup, not a runtime condition.
func NewBusPort(ctx context.Context, ch PIOChannel) uarttransport.Port {
	registry.ClaimStateMachine(registry.StateMachineKey{PIO: pioIndex(ch.PIO), SM: ch.SM}, channelName(ch.Index))

	ch.DirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	ch.DirPin.Low() // receive by default

	u, err := uartx.NewPIOUART(ch.PIO, ch.SM, ch.RXPin, ch.TXPin)
	if err != nil {
		panic("uarttransport: no state machine available for channel " + channelName(ch.Index))
	}
	u.SetBaudRate(busBaud)
	_ = u.SetFormat(8, 1, uartx.ParityNone)

	p := &pioPort{RingPort: uarttransport.NewRingPort(rxRingSize, txRingSize), u: u, dirPin: ch.DirPin}
	go p.pumpRX(ctx)
	go p.pumpTX(ctx)
	return p
}

func pioIndex(p machine.PIO) uint8 {
	if p == machine.PIO1 {
		return 1
	}
	return 0
}

func (p *pioPort) SetBaud(baud uint32) error {
	p.u.SetBaudRate(baud)
	return nil
}

// BusPort pairs a channel's byte transport with its baud-rate setter, so
// the orchestrator can hand each bus engine a reconfiguration hook without
// depending on the platform-specific port type underneath.
type BusPort struct {
	Port    uarttransport.Port
	SetBaud func(uint32) error
}

// NewAllBusPorts brings up every channel in the board's fixed wiring table.
func NewAllBusPorts(ctx context.Context) []BusPort {
	channels := DefaultChannels()
	ports := make([]BusPort, len(channels))
	for i, ch := range channels {
		port := NewBusPort(ctx, ch).(*pioPort)
		ports[i] = BusPort{Port: port, SetBaud: port.SetBaud}
	}
	return ports
}

func (p *pioPort) pumpRX(ctx context.Context) {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.u.Readable():
		}
		n, err := p.u.RecvSomeContext(ctx, buf)
		if err != nil || n == 0 {
			continue
		}
		if w := p.RX.TryWriteFrom(buf[:n]); w < n {
			p.SetOverrun()
		}
	}
}

func (p *pioPort) pumpTX(ctx context.Context) {
	buf := make([]byte, 64)
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		n := p.TX.TryReadInto(buf)
		if n == 0 {
			continue
		}
		p.dirPin.High() // assert driver enable for the duration of the frame
		_, _ = p.u.Write(buf[:n])
		p.dirPin.Low() // release as soon as the last bit has shifted out
	}
}

func channelName(i int) string {
	const digits = "0123456789"
	if i < 0 || i > 9 {
		return "bus?"
	}
	return "bus" + string(digits[i])
}
