package modbus

import "testing"

func feed(t *testing.T, d *Decoder, buf []byte) DecodeResult {
	t.Helper()
	var res DecodeResult
	for _, b := range buf {
		res = d.Step(b)
	}
	return res
}

func TestDecoder_ReadHoldingRegistersResponse(t *testing.T) {
	// slave, func, bytecount=2, data hi/lo
	payload := []byte{0x11, 0x03, 0x02, 0x00, 0x2A}
	crc := CRC16(payload)
	frame := append(append([]byte{}, payload...), byte(crc), byte(crc>>8))

	var d Decoder
	d.Reset()
	res := feed(t, &d, frame)
	if res != Complete {
		t.Fatalf("expected Complete, got %v", res)
	}
	f := d.Frame()
	if f.Slave != 0x11 || f.FunctionCode != 0x03 {
		t.Fatalf("unexpected header: %+v", f)
	}
	if f.HasAddress {
		t.Fatalf("length-prefixed function must not set HasAddress")
	}
	if f.DataSize != 2 || f.Data[0] != 0x00 || f.Data[1] != 0x2A {
		t.Fatalf("unexpected data: %+v", f)
	}
}

func TestDecoder_WriteSingleCoilEcho(t *testing.T) {
	payload := []byte{0x01, 0x05, 0x00, 0x10, 0xFF, 0x00}
	crc := CRC16(payload)
	frame := append(append([]byte{}, payload...), byte(crc), byte(crc>>8))

	var d Decoder
	d.Reset()
	res := feed(t, &d, frame)
	if res != Complete {
		t.Fatalf("expected Complete, got %v", res)
	}
	f := d.Frame()
	if !f.HasAddress || f.Address != 0x0010 {
		t.Fatalf("expected echoed address 0x10, got %+v", f)
	}
	if f.Data[0] != 0xFF || f.Data[1] != 0x00 {
		t.Fatalf("unexpected echoed value: %+v", f)
	}
}

func TestDecoder_CRCMismatch(t *testing.T) {
	frame := []byte{0x01, 0x05, 0x00, 0x10, 0xFF, 0x00, 0x00, 0x00} // wrong crc
	var d Decoder
	d.Reset()
	res := feed(t, &d, frame)
	if res != DecodeError {
		t.Fatalf("expected DecodeError on bad crc, got %v", res)
	}
}

func TestDecoder_InvalidFunction(t *testing.T) {
	var d Decoder
	d.Reset()
	d.Step(0x01) // slave
	res := d.Step(0x99)
	if res != DecodeError {
		t.Fatalf("expected DecodeError for unknown function, got %v", res)
	}
}

func TestDecoder_SlaveOutOfRange(t *testing.T) {
	var d Decoder
	d.Reset()
	res := d.Step(248)
	if res != DecodeError {
		t.Fatalf("expected DecodeError for slave 248, got %v", res)
	}
	// The parser must resync, not wedge: a fresh valid frame right after
	// the rejected byte must still decode.
	payload := []byte{0x11, 0x03, 0x02, 0x00, 0x2A}
	crc := CRC16(payload)
	frame := append(append([]byte{}, payload...), byte(crc), byte(crc>>8))
	if got := feed(t, &d, frame); got != Complete {
		t.Fatalf("decoder did not resync after error, got %v", got)
	}
}

func TestDecoder_SingleBitFlipBreaksCRC(t *testing.T) {
	payload := []byte{0x11, 0x03, 0x02, 0x00, 0x2A}
	crc := CRC16(payload)
	good := append(append([]byte{}, payload...), byte(crc), byte(crc>>8))

	for i := range good {
		corrupt := append([]byte{}, good...)
		corrupt[i] ^= 0x01
		var d Decoder
		d.Reset()
		res := feed(t, &d, corrupt)
		if res == Complete {
			t.Fatalf("bit flip at byte %d was not detected", i)
		}
	}
}
