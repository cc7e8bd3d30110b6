//go:build !(rp2040 || rp2350)

package platform

import (
	"context"
	"sync"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

const (
	rxRingSize = 256
	txRingSize = 256
)

// simPort is the host-buildable stand-in for hardware UART wiring: once
// WireSimPorts has paired it with a peer, bytes written to its TX arrive on
// the peer's RX on the next 1 ms pump tick, so the bus engine and host
// endpoint code paths can be exercised without real silicon.
type simPort struct {
	*uarttransport.RingPort

	mu     sync.Mutex
	peer   *simPort // nil until WireSimPorts wires two ports together
	closed bool
}

// NewHostPort returns a simulated host link for non-MCU builds. Bytes
// written stay queued in its TX ring until WireSimPorts connects it to a peer.
func NewHostPort(ctx context.Context) uarttransport.Port {
	p := &simPort{RingPort: uarttransport.NewRingPort(rxRingSize, txRingSize)}
	go p.pump(ctx)
	return p
}

// NewBusPort returns a simulated RS-485 channel for non-MCU builds.
func NewBusPort(ctx context.Context, index int) uarttransport.Port {
	p := &simPort{RingPort: uarttransport.NewRingPort(rxRingSize, txRingSize)}
	go p.pump(ctx)
	return p
}

func (p *simPort) SetBaud(uint32) error { return nil }

// BusPort pairs a channel's byte transport with its baud-rate setter,
// mirroring the rp2xxx build's type so orchestrator code is build-tag-free.
type BusPort struct {
	Port    uarttransport.Port
	SetBaud func(uint32) error
}

// NewAllBusPorts brings up NumBusChannels simulated channels.
func NewAllBusPorts(ctx context.Context) []BusPort {
	ports := make([]BusPort, NumBusChannels)
	for i := range ports {
		port := NewBusPort(ctx, i).(*simPort)
		ports[i] = BusPort{Port: port, SetBaud: port.SetBaud}
	}
	return ports
}

// WireSimPorts connects two simulated ports so bytes written to one arrive
// as reads on the other, for end-to-end test harnesses driving a fake
// Modbus slave against the real bus engine.
func WireSimPorts(a, b uarttransport.Port) {
	pa, oka := a.(*simPort)
	pb, okb := b.(*simPort)
	if !oka || !okb {
		return
	}
	pa.mu.Lock()
	pa.peer = pb
	pa.mu.Unlock()
	pb.mu.Lock()
	pb.peer = pa
	pb.mu.Unlock()
}

func (p *simPort) pump(ctx context.Context) {
	buf := make([]byte, 64)
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		p.mu.Lock()
		peer := p.peer
		p.mu.Unlock()
		if peer == nil {
			// Leave bytes queued in TX rather than draining and dropping
			// them: a caller that wires a peer after the port has already
			// started writing (eg. an orchestrator Boot/Start split used
			// by a sim harness) must not lose the bytes in between.
			continue
		}
		n := p.TX.TryReadInto(buf)
		if n == 0 {
			continue
		}
		if w := peer.RX.TryWriteFrom(buf[:n]); w < n {
			peer.SetOverrun()
		}
	}
}
