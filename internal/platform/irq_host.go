//go:build !(rp2040 || rp2350)

package platform

// IRQState is a no-op placeholder on host builds, where there are no real
// interrupts to mask.
type IRQState struct{}

// DisableIRQs is a no-op on host builds.
func DisableIRQs() IRQState { return IRQState{} }

// RestoreIRQs is a no-op on host builds.
func RestoreIRQs(_ IRQState) {}
