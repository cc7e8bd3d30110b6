// Package orchestrator brings the board up: it wires the host UART, the
// six bus engines, DMX forwarding, the LED and UART-maintenance tasks, and
// an optional resource-usage reporter onto the internal bus.Bus, then runs
// until the caller cancels its context. Grounded on the teacher's
// main.go/services/hal/hal.go split between "collect hardware handles" and
// "hand them to a long-running service loop", generalized to this bridge's
// seven-step boot sequence.
package orchestrator

import (
	"context"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/bus"
	"github.com/jangala-dev/rs485-hostbridge/internal/busengine"
	"github.com/jangala-dev/rs485-hostbridge/internal/config"
	"github.com/jangala-dev/rs485-hostbridge/internal/dmx"
	"github.com/jangala-dev/rs485-hostbridge/internal/hostendpoint"
	"github.com/jangala-dev/rs485-hostbridge/internal/platform"
	"github.com/jangala-dev/rs485-hostbridge/internal/resources"
	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
	"github.com/jangala-dev/rs485-hostbridge/x/fmtx"
)

// HostQueueLength is the bus's message queue depth. Sized generously
// against the host link's worst case: a burst of periodic changes from all
// six buses landing in the same maintenance tick, per the original
// firmware's HOST_QUEUE_LENGTH.
const HostQueueLength = 200

const (
	activityLEDPeriod  = 25 * time.Millisecond
	heartbeatLEDPeriod = 500 * time.Millisecond
)

// Options tunes optional behaviour; the zero value is the normal boot
// configuration.
type Options struct {
	// Board selects the embedded config blob (internal/config) Boot loads
	// to fill in any of the fields below left at zero. Empty skips it.
	Board string

	// ResourcesPeriod, if nonzero, enables the resource-usage reporter at
	// this cadence. Zero disables it: it is ambient diagnostic tooling,
	// never load-bearing for the bridge itself.
	ResourcesPeriod time.Duration

	// DMXRefresh overrides dmx.DefaultRefresh when nonzero.
	DMXRefresh time.Duration
}

// withBoardDefaults fills any zero-valued tunable in opts from board's
// embedded config, leaving explicit caller settings untouched.
func (opts Options) withBoardDefaults() Options {
	if opts.Board == "" {
		return opts
	}
	settings := config.Load(opts.Board)
	if opts.ResourcesPeriod == 0 && settings.ResourcesPeriodMS > 0 {
		opts.ResourcesPeriod = time.Duration(settings.ResourcesPeriodMS) * time.Millisecond
	}
	if opts.DMXRefresh == 0 && settings.DMXRefreshMS > 0 {
		opts.DMXRefresh = time.Duration(settings.DMXRefreshMS) * time.Millisecond
	}
	return opts
}

// Handle exposes the bus and ports a Boot call brought up, before the bus
// engines are started. A simulation or bring-up harness uses this window
// to wire fake peers onto HostPort/BusPorts (e.g. platform.WireSimPorts)
// before calling Start.
type Handle struct {
	Bus      *bus.Bus
	HostPort uarttransport.Port
	BusPorts []platform.BusPort
	DMXPort  uarttransport.Port
	Universe *dmx.Universe
	Engines  []*busengine.Engine
	Endpoint *hostendpoint.Service

	// opts is the board-resolved Options Boot computed, so Start doesn't
	// need the caller to pass the same resolution through twice.
	opts Options
}

// Boot performs boot steps 1-6: it masks IRQs for the host UART bring-up,
// constructs the bus and every port, and starts the UART maintenance, LED,
// DMX and host endpoint tasks. It does not start the bus engines (step 7)
// or the optional resource reporter started by Start, so a caller gets a
// chance to wire simulated peers onto the returned ports first.
func Boot(ctx context.Context, opts Options) *Handle {
	opts = opts.withBoardDefaults()

	irqState := platform.DisableIRQs()
	hostPort := platform.NewHostPort(ctx)
	platform.RestoreIRQs(irqState)

	b := bus.NewBus(HostQueueLength)

	if opts.Board != "" {
		cfgConn := b.NewConnection("config")
		if err := config.Publish(cfgConn, opts.Board); err != nil {
			fmtx.Printf("orchestrator: %v\n", err)
		}
		cfgConn.Disconnect()
	}

	activity := &uarttransport.ActivityFlag{}
	maintained := []uarttransport.Channel{{Name: "host", Port: hostPort}}

	busPorts := platform.NewAllBusPorts(ctx)
	engines := make([]*busengine.Engine, len(busPorts))
	for i, bp := range busPorts {
		id := uint8(i)
		engines[i] = busengine.New(id, bp.Port, b, busengine.SetBaud(bp.SetBaud))
		maintained = append(maintained, uarttransport.Channel{Name: busChannelName(id), Port: bp.Port})
	}

	go uarttransport.RunMaintenance(ctx, maintained, activity)

	led := platform.NewBoardLED()
	platform.PinToCore(platform.Core0)
	go platform.RunActivityLED(ctx, led, activity, activityLEDPeriod)
	go platform.RunHeartbeatLED(ctx, led, heartbeatLEDPeriod)

	dmxPort := platform.NewDMXPort(ctx)
	universe := dmx.NewUniverse()
	go dmx.Run(ctx, platform.DMXTransport{Port: dmxPort}, universe, opts.DMXRefresh)

	ep := hostendpoint.New(hostPort, b)
	ep.OnReset = platform.ArmWatchdogAndSpin
	go ep.Run(ctx)

	return &Handle{
		Bus:      b,
		HostPort: hostPort,
		BusPorts: busPorts,
		DMXPort:  dmxPort,
		Universe: universe,
		Engines:  engines,
		Endpoint: ep,
		opts:     opts,
	}
}

// Start runs boot step 7: the optional resource-usage reporter and the six
// bus engines. Call it once any simulated peers are wired onto h's ports.
// It uses the board-resolved Options Boot computed, not whatever the
// caller passes to Run, so a board's config-supplied ResourcesPeriod takes
// effect even though Boot is the only place that reads the config blob.
func (h *Handle) Start(ctx context.Context) {
	if h.opts.ResourcesPeriod > 0 {
		go resources.Run(ctx, h.Bus, h.opts.ResourcesPeriod)
	}
	platform.PinToCore(platform.Core1)
	for _, e := range h.Engines {
		go e.Run(ctx)
	}
	fmtx.Printf("orchestrator: boot complete, %d bus engines running\n", len(h.Engines))
}

// Run executes the full seven-step boot sequence and blocks until ctx is
// cancelled. A PICO_RESET from the host arms the watchdog and parks
// forever, per internal/platform's watchdog shim; it does not return to
// the caller in that case either way, since ctx is never cancelled on a
// real board.
func Run(ctx context.Context, opts Options) {
	h := Boot(ctx, opts)
	h.Start(ctx)
	<-ctx.Done()
}

func busChannelName(id uint8) string {
	const digits = "0123456789"
	if id > 9 {
		return "bus?"
	}
	return "bus" + string(digits[id])
}
