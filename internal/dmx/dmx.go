// Package dmx continuously streams a 512-channel DMX-512 universe out one
// dedicated PIO UART channel. There is no scheduler here, unlike the bus
// engines: DMX-512 receivers expect a steady refresh regardless of whether
// any channel actually changed, so the package just re-sends the whole
// universe on a fixed tick.
package dmx

import (
	"context"
	"sync"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/internal/util"
	"github.com/jangala-dev/rs485-hostbridge/x/mathx"
	"github.com/jangala-dev/rs485-hostbridge/x/timex"
)

// NumChannels is the full DMX-512 addressable channel count.
const NumChannels = 512

const (
	// refreshHz matches the original firmware's DMX_DELAY_BETWEEN_WRITES:
	// 1000/12 ticks, i.e. ~12Hz. Well inside the protocol's 1 s "fixture
	// considers the link dead" ceiling.
	refreshHz = 12

	startCode = 0x00
)

// DefaultRefresh is the refresh period at refreshHz.
var DefaultRefresh = time.Duration(timex.PeriodFromHz(refreshHz))

// TXPort is the minimal surface a DMX transport needs: a break+frame send.
// A real
// implementation lives in internal/platform (PIO UART with break
// generation); tests use a fake.
type TXPort interface {
	SendFrame(ctx context.Context, startCode byte, channels []byte) error
}

// Universe is a bounded mailbox for the 512 channel values: SetChannel can
// be called from any goroutine handling a host write, while the streaming
// loop reads a private snapshot each tick.
type Universe struct {
	mu   sync.Mutex
	data [NumChannels]byte
}

// NewUniverse returns a zeroed 512-channel universe.
func NewUniverse() *Universe {
	return &Universe{}
}

// SetChannel sets one DMX channel (1-indexed, as the protocol numbers them)
// to value, clamping the index into range rather than panicking on a bad
// host command.
func (u *Universe) SetChannel(channel int, value byte) {
	idx := mathx.Clamp(channel-1, 0, NumChannels-1)
	u.mu.Lock()
	u.data[idx] = value
	u.mu.Unlock()
}

func (u *Universe) snapshot(dst *[NumChannels]byte) {
	u.mu.Lock()
	*dst = u.data
	u.mu.Unlock()
}

// Run streams the universe out port every refresh until ctx is cancelled.
func Run(ctx context.Context, port TXPort, universe *Universe, refresh time.Duration) {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	t := time.NewTimer(refresh)
	defer t.Stop()

	var frame [NumChannels]byte
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		universe.snapshot(&frame)
		_ = port.SendFrame(ctx, startCode, frame[:])
		util.ResetTimer(t, refresh)
	}
}
