// Package resources publishes periodic Go-runtime resource statistics on
// the internal bus, the equivalent of the original firmware's
// task_res_usage/task_cpu_usage: not part of the bridge's core
// request/response path, consumed only by diagnostics, and safe to leave
// disabled in builds that do not want the reporting overhead.
package resources

import (
	"context"
	"runtime"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/bus"
	"github.com/jangala-dev/rs485-hostbridge/x/timex"
)

// DefaultPeriod matches the original firmware's CPU/heap usage report
// cadence: slow enough to be cheap, frequent enough to catch a leak before
// it starves the bridge.
const DefaultPeriod = 5 * time.Second

// Snapshot is one published sample. The original C reports per-task CPU
// percentages and a single heap high-water mark; goroutines have no
// equivalent of FreeRTOS's per-task runtime counters; so this reports the
// same intent in Go-native terms, per-goroutine count and the live heap
// stats the Go runtime exposes.
type Snapshot struct {
	TimestampMs int64 // timex.NowMs at sample time
	Goroutines  int
	HeapAlloc   uint64 // bytes currently allocated and in use
	HeapSys     uint64 // bytes obtained from the OS for the heap
	NumGC       uint32
}

// Topic is the bus topic snapshots are published on. The LED/diagnostic
// layer is the only intended subscriber; neither the bus engines nor the
// host endpoint depend on it.
func Topic() bus.Topic { return bus.T("resources", "usage") }

// Run samples runtime stats every period and publishes them on b until ctx
// is cancelled. period <= 0 uses DefaultPeriod.
func Run(ctx context.Context, b *bus.Bus, period time.Duration) {
	if period <= 0 {
		period = DefaultPeriod
	}
	conn := b.NewConnection("resources")
	defer conn.Disconnect()

	t := time.NewTicker(period)
	defer t.Stop()

	var m runtime.MemStats
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runtime.ReadMemStats(&m)
			snap := Snapshot{
				TimestampMs: timex.NowMs(),
				Goroutines:  runtime.NumGoroutine(),
				HeapAlloc:   m.HeapAlloc,
				HeapSys:     m.HeapSys,
				NumGC:       m.NumGC,
			}
			conn.Publish(conn.NewMessage(Topic(), snap, false))
		}
	}
}
