package protocol

// LineWriter accumulates one outgoing line in a fixed-size scratch buffer.
// Writes past LineMax are truncated rather than grown, so formatting never
// allocates on the MCU.
type LineWriter struct {
	buf [LineMax]byte
	pos int
}

// NewLineWriter creates an empty LineWriter
func NewLineWriter() *LineWriter {
	return &LineWriter{}
}

// Output appends raw bytes
func (w *LineWriter) Output(data []byte) {
	n := copy(w.buf[w.pos:], data)
	w.pos += n
}

// String appends s
func (w *LineWriter) String(s string) {
	n := copy(w.buf[w.pos:], s)
	w.pos += n
}

// Byte appends a single byte
func (w *LineWriter) Byte(b byte) {
	if w.pos < len(w.buf) {
		w.buf[w.pos] = b
		w.pos++
	}
}

// Int appends a signed decimal
func (w *LineWriter) Int(n int64) {
	var tmp [20]byte
	w.Output(appendInt(tmp[:0], n))
}

// Uint appends an unsigned decimal
func (w *LineWriter) Uint(n uint64) {
	var tmp [20]byte
	w.Output(appendUint(tmp[:0], n))
}

// Tenths appends v rounded to one decimal place
func (w *LineWriter) Tenths(v float32) {
	var tmp [24]byte
	w.Output(appendTenths(tmp[:0], v))
}

// Hex8 appends v as 0xNN
func (w *LineWriter) Hex8(v uint8) {
	var tmp [4]byte
	w.Output(appendHex8(tmp[:0], v))
}

// Triple appends (a,b,c)
func (w *LineWriter) Triple(a, b, c int64) {
	w.Byte('(')
	w.Int(a)
	w.Byte(',')
	w.Int(b)
	w.Byte(',')
	w.Int(c)
	w.Byte(')')
}

// Len returns the number of buffered bytes
func (w *LineWriter) Len() int {
	return w.pos
}

// Result returns the accumulated output data
func (w *LineWriter) Result() []byte {
	return w.buf[:w.pos]
}

// Reset clears the buffer
func (w *LineWriter) Reset() {
	w.pos = 0
}

// FifoBuffer is a circular byte queue used to decouple the control loop from
// a slow transmitter: the loop enqueues whole lines, the target drains what
// the hardware accepts each tick.
type FifoBuffer struct {
	buf     []byte
	read    int
	write   int
	size    int
	dropped uint32
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data and returns how many bytes fit. Bytes that do not fit
// are counted in Dropped.
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			// Buffer full
			f.dropped += uint32(len(data) - written)
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Read reads up to len(data) bytes from the FIFO buffer
func (f *FifoBuffer) Read(data []byte) int {
	read := 0
	for i := range data {
		if f.read == f.write {
			// Buffer empty
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		read++
	}
	return read
}

// Peek copies up to len(data) bytes without removing them
func (f *FifoBuffer) Peek(data []byte) int {
	n, pos := 0, f.read
	for n < len(data) && pos != f.write {
		data[n] = f.buf[pos]
		pos = (pos + 1) % f.size
		n++
	}
	return n
}

// Discard removes up to n bytes from the front of the queue
func (f *FifoBuffer) Discard(n int) {
	if avail := f.Available(); n > avail {
		n = avail
	}
	f.read = (f.read + n) % f.size
}

// ReadByte removes and returns the oldest byte
func (f *FifoBuffer) ReadByte() (byte, bool) {
	if f.read == f.write {
		return 0, false
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, true
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// Dropped returns how many bytes were refused because the queue was full
func (f *FifoBuffer) Dropped() uint32 {
	return f.dropped
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
