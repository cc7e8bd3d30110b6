// Package framing implements a MIN-style self-synchronizing, byte-stuffed
// frame codec over an arbitrary byte stream. A frame is:
//
//	id (1 byte) | length (1 byte) | payload (length bytes) | crc16 (2 bytes, low byte first)
//
// preceded by three consecutive sync bytes (0xAA). Any run of two 0xAA
// bytes appearing inside the header, payload or CRC is followed by a stuff
// byte (0x55) so the receiver never mistakes payload content for a fresh
// sync marker; a genuine third 0xAA always (re)starts a new frame, which is
// what lets a receiver that joined mid-stream, or that lost bytes to a line
// glitch, recover without a timeout. The CRC reuses the bus transport's
// CRC16 so the firmware carries exactly one CRC implementation.
package framing

import "github.com/jangala-dev/rs485-hostbridge/internal/modbus"

const (
	syncByte  byte = 0xAA
	stuffByte byte = 0x55

	// MaxPayload bounds a single frame's payload; large enough for the
	// widest CONFIG_BUS message (a periodic-read table) without an
	// unbounded allocation per frame.
	MaxPayload = 255
)

type stuffWriter struct {
	dst []byte
	n   int
	run int
}

// writeRaw appends b to the output without applying stuffing, used only
// for the three literal sync bytes that open a frame.
func (w *stuffWriter) writeRaw(b byte) bool {
	if w.n >= len(w.dst) {
		return false
	}
	w.dst[w.n] = b
	w.n++
	return true
}

// write appends b to the output, inserting a stuff byte after every second
// consecutive sync byte. Reports false if dst is exhausted.
func (w *stuffWriter) write(b byte) bool {
	if w.n >= len(w.dst) {
		return false
	}
	w.dst[w.n] = b
	w.n++
	if b == syncByte {
		w.run++
		if w.run == 2 {
			if w.n >= len(w.dst) {
				return false
			}
			w.dst[w.n] = stuffByte
			w.n++
			w.run = 0
		}
	} else {
		w.run = 0
	}
	return true
}

// Encode writes a framed, stuffed message for (id, payload) into dst and
// returns the number of bytes written, or 0 if payload exceeds MaxPayload or
// dst is too small for the result.
func Encode(id uint8, payload []byte, dst []byte) int {
	if len(payload) > MaxPayload {
		return 0
	}
	w := stuffWriter{dst: dst}
	if !w.writeRaw(syncByte) || !w.writeRaw(syncByte) || !w.writeRaw(syncByte) {
		return 0
	}

	crc := modbus.CRCInit
	put := func(b byte) bool {
		crc = modbus.CRCStep(crc, b)
		return w.write(b)
	}
	if !put(id) || !put(uint8(len(payload))) {
		return 0
	}
	for _, b := range payload {
		if !put(b) {
			return 0
		}
	}
	if !w.write(byte(crc)) || !w.write(byte(crc>>8)) {
		return 0
	}
	return w.n
}
