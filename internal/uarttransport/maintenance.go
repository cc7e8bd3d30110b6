package uarttransport

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/x/fmtx"
)

// MaintenancePeriod matches the original firmware's task_uart_maintenance
// cadence: frequent enough to catch an overrun before the next bus cycle
// masks it, cheap enough to run on every tick.
const MaintenancePeriod = 25 * time.Millisecond

// Channel names one maintained port for logging.
type Channel struct {
	Name string
	Port Port
}

// RunMaintenance polls chans every MaintenancePeriod, logging and clearing
// any latched overrun and folding per-channel activity into a single
// sticky flag the caller can sample (eg. to drive an activity LED).
func RunMaintenance(ctx context.Context, chans []Channel, activity *ActivityFlag) {
	t := time.NewTicker(MaintenancePeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			any := false
			for _, c := range chans {
				if c.Port.Overrun() {
					fmtx.Printf("uart %s: rx overrun\n", c.Name)
					c.Port.ClearOverrun()
				}
				if c.Port.Activity() {
					any = true
				}
			}
			if any {
				activity.Set()
			}
		}
	}
}

// ActivityFlag is a sticky, concurrency-safe bool consumed by the LED task.
type ActivityFlag struct{ v atomic.Bool }

func (a *ActivityFlag) Set() { a.v.Store(true) }

// TestAndClear reports the flag and resets it to false.
func (a *ActivityFlag) TestAndClear() bool { return a.v.Swap(false) }
