//go:build !(rp2040 || rp2350)

package platform

// noopLED satisfies LEDPin on host builds, where there is no physical pin
// to drive; RunActivityLED/RunHeartbeatLED still exercise their timing
// logic against it under test.
type noopLED struct {
	level bool
}

// NewLEDPin returns an inert LEDPin for host builds. The pin number is
// accepted for call-site symmetry with the rp2xxx constructor and ignored.
func NewLEDPin(_ int) LEDPin { return &noopLED{} }

func (n *noopLED) Set(level bool) { n.level = level }
func (n *noopLED) Toggle()        { n.level = !n.level }
