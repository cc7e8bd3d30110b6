//go:build !(rp2040 || rp2350)

package platform

// NumBusChannels matches the rp2xxx board's channel count so host-built
// simulations and tests exercise the same bus count as firmware.
const NumBusChannels = 6

// NewBoardLED returns an inert LED standing in for the board's onboard LED.
func NewBoardLED() LEDPin { return NewLEDPin(0) }
