package framing

import (
	"bytes"
	"testing"
)

// decodeOne feeds frame through a Decoder and returns the id/payload of the
// first completed frame. A trailing stuff byte can land after the CRC if
// the CRC itself happens to contain an 0xAA,0xAA run, so bytes after
// completion are fed through but ignored rather than asserted against.
func decodeOne(t *testing.T, frame []byte) (id uint8, payload []byte) {
	t.Helper()
	var d Decoder
	var gotID uint8
	var gotPayload []byte
	done := false
	for i, b := range frame {
		res := d.Step(b)
		if res == FrameError {
			t.Fatalf("unexpected FrameError at byte %d (% x)", i, frame)
		}
		if res == FrameComplete && !done {
			done = true
			gotID = d.ID()
			gotPayload = append([]byte(nil), d.Payload()...)
		}
	}
	if !done {
		t.Fatalf("frame never completed (% x)", frame)
	}
	return gotID, gotPayload
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		id      uint8
		payload []byte
	}{
		{"empty", 0x3F, nil},
		{"short", 0x01, []byte{1, 2, 3}},
		{"no-sync-bytes", 0x08, []byte{0, 1, 0x54, 0x56, 0xFF}},
		{"single-sync-byte", 0x09, []byte{0xAA, 1, 2}},
		{"sync-run-at-start", 0x0A, []byte{0xAA, 0xAA, 1}},
		{"sync-run-at-end", 0x0B, []byte{1, 0xAA, 0xAA}},
		{"all-sync", 0x02, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}},
		{"sync-run-then-stuff-byte", 0x04, []byte{0xAA, 0xAA, 0x55}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]byte, 64)
			n := Encode(tc.id, tc.payload, dst)
			if n == 0 {
				t.Fatalf("Encode returned 0")
			}
			frame := dst[:n]
			if !bytes.Equal(frame[:3], []byte{syncByte, syncByte, syncByte}) {
				t.Fatalf("frame does not start with sync header: % x", frame)
			}

			gotID, gotPayload := decodeOne(t, frame)
			if gotID != tc.id {
				t.Errorf("id = %#x, want %#x", gotID, tc.id)
			}
			if !bytes.Equal(gotPayload, tc.payload) {
				t.Errorf("payload = % x, want % x", gotPayload, tc.payload)
			}
		})
	}
}

func TestDecoderResyncsAfterGarbage(t *testing.T) {
	dst := make([]byte, 64)
	n := Encode(0x3D, []byte{9, 9}, dst)
	frame := dst[:n]

	garbage := []byte{0x01, 0xAA, 0x00, 0xAA, 0xAA, 0x12}
	stream := append(append([]byte(nil), garbage...), frame...)

	var d Decoder
	var id uint8
	var payload []byte
	done := false
	for _, b := range stream {
		switch d.Step(b) {
		case FrameError:
			d.Reset()
		case FrameComplete:
			id = d.ID()
			payload = append([]byte(nil), d.Payload()...)
			done = true
		}
	}
	if !done {
		t.Fatalf("decoder never produced a frame from garbage+frame stream (% x)", stream)
	}
	if id != 0x3D {
		t.Errorf("id = %#x, want 0x3d", id)
	}
	if !bytes.Equal(payload, []byte{9, 9}) {
		t.Errorf("payload = % x, want [09 09]", payload)
	}
}

func TestDecoderDetectsCorruptCRC(t *testing.T) {
	dst := make([]byte, 64)
	n := Encode(0x01, []byte{1, 2, 3, 4}, dst)
	frame := append([]byte(nil), dst[:n]...)
	frame[len(frame)-1] ^= 0xFF

	var d Decoder
	gotErr := false
	for _, b := range frame {
		switch d.Step(b) {
		case FrameError:
			gotErr = true
		case FrameComplete:
			t.Fatalf("expected FrameError for corrupted CRC, got FrameComplete")
		}
	}
	if !gotErr {
		t.Fatalf("expected FrameError somewhere in the stream, got none")
	}
}

func TestDecoderDetectsTruncatedSyncThenCorruption(t *testing.T) {
	var d Decoder
	// Two sync bytes followed by something that is neither a third sync byte
	// nor the stuff byte: the stream is corrupt at that point.
	if res := d.Step(0xAA); res != FrameIncomplete {
		t.Fatalf("Step(0xAA) = %v, want FrameIncomplete", res)
	}
	if res := d.Step(0xAA); res != FrameIncomplete {
		t.Fatalf("Step(0xAA) = %v, want FrameIncomplete", res)
	}
	if res := d.Step(0x01); res != FrameError {
		t.Fatalf("Step(0x01) after AA AA = %v, want FrameError", res)
	}
}

func TestEncodeRejectsOversizePayload(t *testing.T) {
	dst := make([]byte, 1024)
	payload := make([]byte, MaxPayload+1)
	if n := Encode(0x01, payload, dst); n != 0 {
		t.Fatalf("Encode with oversize payload = %d, want 0", n)
	}
}

func TestEncodeRejectsShortDst(t *testing.T) {
	dst := make([]byte, 4)
	if n := Encode(0x01, []byte{1, 2, 3, 4, 5}, dst); n != 0 {
		t.Fatalf("Encode with short dst = %d, want 0", n)
	}
}
