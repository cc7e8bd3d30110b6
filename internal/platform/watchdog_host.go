//go:build !(rp2040 || rp2350)

package platform

// ArmWatchdogAndSpin simulates PICO_RESET on host builds: there is no real
// watchdog timer to reboot the process, so it just parks the calling
// goroutine forever, mirroring the on-target "wait for the watchdog to
// fire" behaviour without taking the test process down with it.
func ArmWatchdogAndSpin() {
	select {}
}
