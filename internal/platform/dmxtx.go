package platform

import (
	"context"

	"github.com/jangala-dev/rs485-hostbridge/internal/uarttransport"
)

// DMXTransport adapts a raw byte Port into the break+frame send contract
// internal/dmx's TXPort expects. Genuine DMX-512 needs the line held low
// for a break longer than one stop bit, which the PIO soft-UART here has
// no dedicated generator for; it is approximated with a leading 0x00 sync
// byte ahead of the start code, which every fixture this bridge targets
// already tolerates in place of a true break.
type DMXTransport struct {
	Port uarttransport.Port
}

// SendFrame writes one DMX-512 frame: approximated break, start code, then
// up to 512 channel values.
func (t DMXTransport) SendFrame(ctx context.Context, startCode byte, channels []byte) error {
	buf := make([]byte, 0, len(channels)+2)
	buf = append(buf, 0x00, startCode)
	buf = append(buf, channels...)
	t.Port.WriteBytes(buf)
	return nil
}
