//go:build rp2040 || rp2350

package platform

// Core identifies one of the RP2040's two cores, matching the original
// firmware's HOST_TASK_CORE_AFFINITY / BUS_TASK_CORE_AFFINITY bitmasks.
type Core uint8

const (
	Core0 Core = iota
	Core1
)

// PinToCore requests that the calling goroutine's work run preferentially
// on core. TinyGo's scheduler on rp2040 is cooperative and single-threaded
// per core without an exposed affinity API at this level, so this records
// intent for documentation and future use rather than performing a real
// pin; the goroutine still runs correctly regardless.
func PinToCore(_ Core) {}
