package platform

import (
	"context"
	"time"
)

// LEDPin is the minimal GPIO surface the LED tasks need.
type LEDPin interface {
	Set(level bool)
	Toggle()
}

// RunActivityLED blinks pin briefly whenever activity.TestAndClear reports
// true, and idles otherwise. Grounded on the original firmware's act-LED
// task: a short flash per maintenance tick that saw any byte cross a link.
func RunActivityLED(ctx context.Context, pin LEDPin, activity FlagSource, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if activity.TestAndClear() {
				pin.Set(true)
				time.Sleep(5 * time.Millisecond)
				pin.Set(false)
			}
		}
	}
}

// RunHeartbeatLED toggles pin at a fixed cadence to show the board is
// alive, independent of bus activity.
func RunHeartbeatLED(ctx context.Context, pin LEDPin, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pin.Toggle()
		}
	}
}

// FlagSource is satisfied by uarttransport.ActivityFlag; declared here as an
// interface so this package does not need to import uarttransport.
type FlagSource interface {
	TestAndClear() bool
}
