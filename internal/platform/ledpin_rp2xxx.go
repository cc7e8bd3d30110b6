//go:build rp2040 || rp2350

package platform

import "machine"

type gpioLED struct{ pin machine.Pin }

// NewLEDPin configures pin as a digital output and returns an LEDPin
// wrapping it.
func NewLEDPin(pin machine.Pin) LEDPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &gpioLED{pin: pin}
}

func (g *gpioLED) Set(level bool) { g.pin.Set(level) }
func (g *gpioLED) Toggle()        { g.pin.Set(!g.pin.Get()) }
