//go:build !(rp2040 || rp2350)

package platform

import (
	"context"

	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

// NewDMXPort returns a simulated DMX output port for non-MCU builds, using
// the same loopback-capable sim machinery as the bus channels.
func NewDMXPort(ctx context.Context) uarttransport.Port {
	return NewBusPort(ctx, NumBusChannels)
}
