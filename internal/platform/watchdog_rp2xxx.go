//go:build rp2040 || rp2350

package platform

import "machine"

// ArmWatchdogAndSpin arms the hardware watchdog at its minimum timeout and
// then blocks forever. Nothing ever pets it again, so the watchdog fires
// and resets the board shortly after — the entire implementation of
// PICO_RESET, per the original firmware's reset handler.
func ArmWatchdogAndSpin() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	select {}
}
