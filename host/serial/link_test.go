package serial

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamLinkDeliversBytesInOrder(t *testing.T) {
	pr, pw := io.Pipe()
	var out bytes.Buffer
	link := NewStreamLink(pr, &out, 16)

	_, ok := link.TryReadByte()
	assert.False(t, ok, "empty link must not block or return data")

	go func() {
		pw.Write([]byte("help\r"))
	}()

	var got []byte
	require.Eventually(t, func() bool {
		for {
			b, ok := link.TryReadByte()
			if !ok {
				break
			}
			got = append(got, b)
		}
		return len(got) == 5
	}, time.Second, time.Millisecond)
	assert.Equal(t, "help\r", string(got))

	n, err := link.Write([]byte("OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "OK\r\n", out.String())
}

func TestStreamLinkStopsAtEndOfStream(t *testing.T) {
	pr, pw := io.Pipe()
	link := NewStreamLink(pr, io.Discard, 0)

	require.NoError(t, pw.Close())

	select {
	case <-link.Done():
	case <-time.After(time.Second):
		t.Fatal("reader did not stop after the writer closed")
	}
	assert.ErrorIs(t, link.Err(), io.EOF)
	assert.Equal(t, 0, link.Pending())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, 100, cfg.ReadTimeout)
}

func TestOpenRejectsNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

// timeoutReader times out once, then serves data, then ends
type timeoutReader struct {
	calls int
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	r.calls++
	switch r.calls {
	case 1:
		return 0, ErrReadTimeout
	case 2:
		return copy(p, "x"), nil
	}
	return 0, io.EOF
}

func TestStreamLinkRetriesAfterTimeout(t *testing.T) {
	link := NewStreamLink(&timeoutReader{}, io.Discard, 4)

	<-link.Done()
	b, ok := link.TryReadByte()
	require.True(t, ok)
	assert.Equal(t, byte('x'), b)
	assert.ErrorIs(t, link.Err(), io.EOF)
	assert.True(t, IsTimeout(ErrReadTimeout))
}
