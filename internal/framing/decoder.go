package framing

import "github.com/jangala-dev/rs485-hostbridge/internal/modbus"

// Result is the outcome of feeding one byte to a Decoder.
type Result uint8

const (
	FrameIncomplete Result = iota
	FrameComplete
	FrameError
)

type fieldState uint8

const (
	fHeaderID fieldState = iota
	fHeaderLen
	fPayload
	fCRC1
	fCRC2
)

// Decoder is a byte-fed framing.Encode counterpart: self-synchronizing, so
// it can be handed any byte stream (including garbage before the first
// frame, or a line glitch mid-frame) and will always lock onto the next
// valid sync marker rather than getting stuck.
type Decoder struct {
	aaRun   uint8 // consecutive raw 0xAA bytes seen, saturating at the 3 that open a frame
	parsing bool

	field   fieldState
	id      uint8
	length  uint8
	payload []byte
	crc     uint16
	crcLow  byte
}

// Reset discards any partially-parsed frame and waits for a fresh sync.
func (d *Decoder) Reset() {
	d.aaRun = 0
	d.parsing = false
	d.payload = d.payload[:0]
}

// ID returns the message id of the most recently completed frame.
func (d *Decoder) ID() uint8 { return d.id }

// Payload returns the payload of the most recently completed frame. The
// returned slice is reused by the decoder and must be copied if it needs
// to outlive the next Step call.
func (d *Decoder) Payload() []byte { return d.payload }

// Step feeds one received byte into the decoder.
func (d *Decoder) Step(b byte) Result {
	if b == syncByte {
		d.aaRun++
		if d.aaRun == 3 {
			d.startFrame()
			d.aaRun = 0
		}
		return FrameIncomplete
	}

	switch d.aaRun {
	case 0:
		return d.literal(b)
	case 1:
		d.aaRun = 0
		res := d.literal(syncByte)
		if res == FrameError {
			return res
		}
		return d.literal(b)
	default: // 2
		d.aaRun = 0
		if b == stuffByte {
			// The two sync bytes just seen were real data, now confirmed
			// by the stuff byte; feed them both in.
			res := d.literal(syncByte)
			if res == FrameError {
				return res
			}
			return d.literal(syncByte)
		}
		// Two sync bytes followed by neither a third (handled above) nor
		// a stuff byte: the stream is corrupt.
		d.parsing = false
		return FrameError
	}
}

func (d *Decoder) startFrame() {
	d.parsing = true
	d.field = fHeaderID
	d.payload = d.payload[:0]
	d.crc = modbus.CRCInit
}

func (d *Decoder) literal(b byte) Result {
	if !d.parsing {
		return FrameIncomplete
	}
	switch d.field {
	case fHeaderID:
		d.id = b
		d.crc = modbus.CRCStep(d.crc, b)
		d.field = fHeaderLen
	case fHeaderLen:
		d.length = b
		d.crc = modbus.CRCStep(d.crc, b)
		if d.length == 0 {
			d.field = fCRC1
		} else {
			d.field = fPayload
		}
	case fPayload:
		d.payload = append(d.payload, b)
		d.crc = modbus.CRCStep(d.crc, b)
		if uint8(len(d.payload)) >= d.length {
			d.field = fCRC1
		}
	case fCRC1:
		d.crcLow = b
		d.field = fCRC2
	case fCRC2:
		d.parsing = false
		got := uint16(b)<<8 | uint16(d.crcLow)
		if got != d.crc {
			return FrameError
		}
		return FrameComplete
	}
	return FrameIncomplete
}
