package modbus

import "testing"

func TestReadFrame_ReadHoldingRegisters(t *testing.T) {
	var buf [8]byte
	n := ReadFrame(FuncReadHoldingRegisters, 0x11, 0x0042, buf[:])
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}
	want := []byte{0x11, 0x03, 0x00, 0x42, 0x00, 0x01}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("byte %d: got %#x want %#x", i, buf[i], b)
		}
	}
	if got := CRC16(buf[:6]); byte(got) != buf[6] || byte(got>>8) != buf[7] {
		t.Fatalf("crc mismatch: frame has %#x %#x, computed %#x", buf[6], buf[7], got)
	}
}

func TestWriteFrame_SingleCoil(t *testing.T) {
	var buf [8]byte
	n := WriteFrame(FuncWriteSingleCoil, 0x01, 0x0010, 0xFF00, buf[:])
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}
	want := []byte{0x01, 0x05, 0x00, 0x10, 0xFF, 0x00}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("byte %d: got %#x want %#x", i, buf[i], b)
		}
	}
}

func TestWriteFrame_SingleCoilMapsTruthyValue(t *testing.T) {
	var buf [8]byte
	n := WriteFrame(FuncWriteSingleCoil, 0x01, 0x0010, 1, buf[:])
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}
	if buf[4] != 0xFF || buf[5] != 0x00 {
		t.Fatalf("value=1 must map to coil sentinel 0xFF00, got %#x %#x", buf[4], buf[5])
	}
	n = WriteFrame(FuncWriteSingleCoil, 0x01, 0x0010, 0, buf[:])
	if n != 8 || buf[4] != 0x00 || buf[5] != 0x00 {
		t.Fatalf("value=0 must map to 0x0000, got %#x %#x", buf[4], buf[5])
	}
}

func TestWriteFrame_MultipleCoilsSingleCoil(t *testing.T) {
	var buf [10]byte
	n := WriteFrame(FuncWriteMultipleCoils, 0x07, 0x0020, 1, buf[:])
	if n != 10 {
		t.Fatalf("expected 10 bytes, got %d", n)
	}
	want := []byte{0x07, 0x0F, 0x00, 0x20, 0x00, 0x01, 0x01, 0xFF}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("byte %d: got %#x want %#x", i, buf[i], b)
		}
	}
}

func TestWriteFrame_SingleRegister(t *testing.T) {
	var buf [11]byte
	n := WriteFrame(FuncWriteMultipleRegisters, 0x01, 0x0001, 0x1234, buf[:])
	if n != 11 {
		t.Fatalf("expected 11 bytes, got %d", n)
	}
	want := []byte{0x01, 0x10, 0x00, 0x01, 0x00, 0x01, 0x02, 0x12, 0x34}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("byte %d: got %#x want %#x", i, buf[i], b)
		}
	}
}

func TestWriteFrame_UnsupportedFunction(t *testing.T) {
	var buf [11]byte
	if n := WriteFrame(FuncReadCoils, 0x01, 0, 0, buf[:]); n != 0 {
		t.Fatalf("expected 0 for unsupported function, got %d", n)
	}
}
