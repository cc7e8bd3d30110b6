//go:build rp2040 || rp2350

package platform

import "runtime/interrupt"

// DisableIRQs masks interrupts for the duration of early boot, before any
// UART or PIO peripheral is configured, and returns a token that restores
// the previous state. Mirrors the original firmware's first boot step.
func DisableIRQs() interrupt.State {
	return interrupt.Disable()
}

// RestoreIRQs unmasks interrupts using a token from DisableIRQs.
func RestoreIRQs(state interrupt.State) {
	interrupt.Restore(state)
}
