//go:build rp2040 || rp2350

package platform

import "machine"

// NumBusChannels is the number of independent RS-485 channels the board
// wires up, each synthesized on PIO rather than a hardware UART peripheral.
const NumBusChannels = 6

// DefaultChannels is the board's fixed RX/TX/direction pin and state
// machine table. One state machine per channel is claimed once at startup
// via internal/registry and never released; six channels fit the RP2040's
// eight state machines (four on PIO0, four on PIO1) with two to spare.
func DefaultChannels() []PIOChannel {
	return []PIOChannel{
		{Index: 0, RXPin: 2, TXPin: 3, DirPin: 4, PIO: machine.PIO0, SM: 0},
		{Index: 1, RXPin: 6, TXPin: 7, DirPin: 8, PIO: machine.PIO0, SM: 1},
		{Index: 2, RXPin: 10, TXPin: 11, DirPin: 12, PIO: machine.PIO0, SM: 2},
		{Index: 3, RXPin: 14, TXPin: 15, DirPin: 16, PIO: machine.PIO0, SM: 3},
		{Index: 4, RXPin: 18, TXPin: 19, DirPin: 20, PIO: machine.PIO1, SM: 0},
		{Index: 5, RXPin: 22, TXPin: 26, DirPin: 27, PIO: machine.PIO1, SM: 1},
	}
}

// activityLEDPin mirrors the original firmware's LED_PIN_ACT wiring; the
// board's single built-in LED doubles as both activity and ready indicator.
const activityLEDPin = machine.Pin(0)

// NewBoardLED returns the board's single onboard LED, shared by the
// activity and heartbeat tasks.
func NewBoardLED() LEDPin { return NewLEDPin(activityLEDPin) }
