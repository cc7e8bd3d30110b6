//go:build rp2040 || rp2350

package platform

import (
	"context"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"machine"

	"github.com/jangala-dev/rs485-hostbridge/internal/registry"
	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

const dmxBaud = 250000

// dmxSM is the spare state machine the board's six bus channels leave free
// on PIO1 (four channels claim PIO0, two claim PIO1's first two slots).
var dmxSM = registry.StateMachineKey{PIO: 1, SM: 2}

const (
	dmxTXPin  = machine.Pin(1)
	dmxEnPin  = machine.Pin(0)
)

// NewDMXPort claims the spare state machine and brings up a transmit-only
// soft UART at DMX-512's fixed 250000 baud, 8N2. The driver-enable pin is
// asserted once and left high: unlike the bidirectional bus channels, a
// DMX universe is forever a transmitter, never a receiver.
func NewDMXPort(ctx context.Context) uarttransport.Port {
	registry.ClaimStateMachine(dmxSM, "dmx")

	dmxEnPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dmxEnPin.High()

	u, err := uartx.NewPIOUART(machine.PIO1, 2, dmxTXPin, dmxTXPin)
	if err != nil {
		panic("platform: no state machine available for dmx")
	}
	u.SetBaudRate(dmxBaud)
	_ = u.SetFormat(8, 2, uartx.ParityNone)

	p := &pioPort{RingPort: uarttransport.NewRingPort(rxRingSize, txRingSize), u: u, dirPin: dmxEnPin}
	go p.pumpTX(ctx)
	return p
}
