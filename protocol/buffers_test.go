package protocol

import "testing"

func TestLineWriter(t *testing.T) {
	w := NewLineWriter()

	w.String("OK ")
	if w.Len() != 3 {
		t.Errorf("Expected length 3, got %d", w.Len())
	}

	w.Int(-42)
	w.Byte(' ')
	w.Uint(7)
	w.Byte(' ')
	w.Hex8(0x68)
	w.Byte(' ')
	w.Triple(1, -2, 3)

	want := "OK -42 7 0x68 (1,-2,3)"
	if got := string(w.Result()); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	w.Reset()
	if w.Len() != 0 {
		t.Errorf("After reset, expected length 0, got %d", w.Len())
	}
}

func TestLineWriterTruncates(t *testing.T) {
	w := NewLineWriter()

	long := make([]byte, LineMax+10)
	for i := range long {
		long[i] = 'a'
	}
	w.Output(long)
	w.Byte('b')
	w.String("cd")

	if w.Len() != LineMax {
		t.Errorf("Expected length capped at %d, got %d", LineMax, w.Len())
	}
	if w.Result()[LineMax-1] != 'a' {
		t.Errorf("Overflowing bytes should be dropped, last byte is %q", w.Result()[LineMax-1])
	}
}

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)

	if !fifo.IsEmpty() {
		t.Error("New FIFO should be empty")
	}

	if fifo.Available() != 0 {
		t.Errorf("Empty FIFO should have 0 available, got %d", fifo.Available())
	}

	// Write some data
	data := []byte{1, 2, 3, 4, 5}
	written := fifo.Write(data)

	if written != 5 {
		t.Errorf("Expected to write 5 bytes, wrote %d", written)
	}

	if fifo.Available() != 5 {
		t.Errorf("Expected 5 bytes available, got %d", fifo.Available())
	}

	// Read some data
	readBuf := make([]byte, 3)
	read := fifo.Read(readBuf)

	if read != 3 {
		t.Errorf("Expected to read 3 bytes, read %d", read)
	}

	if readBuf[0] != 1 || readBuf[1] != 2 || readBuf[2] != 3 {
		t.Errorf("Read data mismatch: got %v", readBuf)
	}

	b, ok := fifo.ReadByte()
	if !ok || b != 4 {
		t.Errorf("ReadByte: expected 4, got %d (ok=%v)", b, ok)
	}
	if fifo.Available() != 1 {
		t.Errorf("Expected 1 available, got %d", fifo.Available())
	}

	// Overflow is counted, not stored
	fifo.Reset()
	bigData := make([]byte, 12)
	for i := range bigData {
		bigData[i] = byte(i)
	}
	written = fifo.Write(bigData)
	if written != 9 { // Buffer size is 10, can only store 9 (one slot reserved)
		t.Errorf("Expected to write 9 bytes to size-10 FIFO, wrote %d", written)
	}
	if fifo.Dropped() != 3 {
		t.Errorf("Expected 3 dropped bytes, got %d", fifo.Dropped())
	}
	if fifo.Free() != 0 {
		t.Errorf("Full FIFO should have 0 free, got %d", fifo.Free())
	}
}

func TestFifoBufferWrapAround(t *testing.T) {
	fifo := NewFifoBuffer(5)

	// Fill buffer
	fifo.Write([]byte{1, 2, 3, 4})

	// Read some
	readBuf := make([]byte, 2)
	fifo.Read(readBuf)

	// Write more (will wrap around)
	written := fifo.Write([]byte{5, 6})
	if written != 2 {
		t.Errorf("Expected to write 2 bytes, wrote %d", written)
	}

	// Verify order
	allData := make([]byte, 4)
	read := fifo.Read(allData)
	if read != 4 {
		t.Errorf("Expected to read 4 bytes, read %d", read)
	}
	if allData[0] != 3 || allData[1] != 4 || allData[2] != 5 || allData[3] != 6 {
		t.Errorf("Wrap-around data mismatch: got %v", allData)
	}

	if _, ok := fifo.ReadByte(); ok {
		t.Error("ReadByte on empty FIFO should report false")
	}
}

func TestFifoBufferPeekDiscard(t *testing.T) {
	f := NewFifoBuffer(8)
	f.Write([]byte("abcdef"))
	f.Discard(4)
	f.Write([]byte("ghij"))

	var out [8]byte
	n := f.Peek(out[:])
	if got := string(out[:n]); got != "efghij" {
		t.Errorf("Expected %q, got %q", "efghij", got)
	}
	if f.Available() != 6 {
		t.Errorf("Peek must not consume, available %d", f.Available())
	}

	f.Discard(100)
	if !f.IsEmpty() {
		t.Errorf("Expected empty buffer after oversized discard")
	}
}
