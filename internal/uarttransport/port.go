// Package uarttransport is the byte-level transport underneath every RS-485
// bus and the host link: a fixed-size RX/TX ring per channel, fed and
// drained by platform-specific pump goroutines, with sticky overrun and
// activity flags for the maintenance task to report and clear.
package uarttransport

import (
	"sync/atomic"

	"github.com/jangala-dev/rs485-hostbridge/x/shmring"
)

// Port is the byte-stream abstraction every bus engine and the host
// endpoint drive. It never blocks: writes fill as much of the TX ring as
// there is space for, reads drain as much of the RX ring as is available.
type Port interface {
	WriteBytes(src []byte) (written int)
	ReadBytes(dst []byte) (n int)
	ReadByte() (b byte, ok bool)
	RXFlush()
	TXSpace() int
	Overrun() bool
	ClearOverrun()
	Activity() bool
}

// RingPort is the shared plumbing behind every Port implementation: two
// shmring.Ring buffers, one per direction, plus sticky status flags. A
// platform pump goroutine (on rp2xxx and on host alike) owns filling RX
// and draining TX; RingPort only owns the application-facing half.
type RingPort struct {
	RX *shmring.Ring
	TX *shmring.Ring

	overrun  atomic.Bool
	activity atomic.Bool
}

// NewRingPort allocates a ring pair. Sizes must be powers of two.
func NewRingPort(rxSize, txSize int) *RingPort {
	return &RingPort{
		RX: shmring.New(rxSize),
		TX: shmring.New(txSize),
	}
}

func (p *RingPort) WriteBytes(src []byte) int {
	n := p.TX.TryWriteFrom(src)
	if n > 0 {
		p.activity.Store(true)
	}
	if n < len(src) {
		p.overrun.Store(true)
	}
	return n
}

func (p *RingPort) ReadBytes(dst []byte) int {
	n := p.RX.TryReadInto(dst)
	if n > 0 {
		p.activity.Store(true)
	}
	return n
}

func (p *RingPort) ReadByte() (byte, bool) {
	var b [1]byte
	if p.RX.TryReadInto(b[:]) == 1 {
		p.activity.Store(true)
		return b[0], true
	}
	return 0, false
}

// RXFlush discards whatever is currently buffered in the RX ring, used
// before each bus transaction so a late byte from the previous exchange
// cannot be mistaken for the start of the next response.
func (p *RingPort) RXFlush() {
	for {
		p1, p2 := p.RX.ReadAcquire()
		if len(p1) == 0 {
			return
		}
		p.RX.ReadRelease(len(p1) + len(p2))
	}
}

func (p *RingPort) TXSpace() int { return p.TX.Space() }

func (p *RingPort) Overrun() bool { return p.overrun.Load() }

// SetOverrun latches the overrun flag; it is cleared only by ClearOverrun,
// called from the periodic maintenance task after it has been reported.
func (p *RingPort) SetOverrun() { p.overrun.Store(true) }

func (p *RingPort) ClearOverrun() { p.overrun.Store(false) }

// Activity reports whether any byte crossed this port since the last call
// and clears the flag, matching the original firmware's maintenance-task
// activity bookkeeping.
func (p *RingPort) Activity() bool { return p.activity.Swap(false) }
