package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTenths(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{0, "0.0"},
		{42.34, "42.3"},
		{42.36, "42.4"},
		{89.96, "90.0"},
		{180, "180.0"},
		{-0.04, "0.0"},
		{-12.5, "-12.5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTenths(tt.in), "FormatTenths(%v)", tt.in)
	}
}

func TestItoa(t *testing.T) {
	assert.Equal(t, "0", Itoa(0))
	assert.Equal(t, "-16384", Itoa(-16384))
	assert.Equal(t, "4294967295", Utoa(0xFFFFFFFF))
}

func TestAppendFrame(t *testing.T) {
	w := NewLineWriter()
	AppendFrame(w, Frame{
		Device: "PostureMonitor",
		State:  "Monitoring",
		Alert:  "Warning",
		Tilt:   42.3,
		Accel:  [3]int16{120, -45, 16200},
		Color:  [3]uint8{30, 30, 0},
		LED:    true,
		Count:  57,
		Time:   12340,
	})

	want := "[dev=PostureMonitor state=Monitoring alert=Warning tilt=42.3° accel=(120,-45,16200) neo=(30,30,0) led=on cnt=57 t=12340]\r\n"
	assert.Equal(t, want, string(w.Result()))
}

func TestWidestFrameFitsOneLine(t *testing.T) {
	w := NewLineWriter()
	AppendFrame(w, Frame{
		Device: strings.Repeat("N", 32),
		State:  "Calibrating",
		Alert:  "Warning",
		Tilt:   -180,
		Accel:  [3]int16{-32768, -32768, -32768},
		Color:  [3]uint8{255, 255, 255},
		Count:  0xFFFFFFFF,
		Time:   0xFFFFFFFF,
	})

	out := string(w.Result())
	assert.Less(t, len(out), LineMax)
	assert.True(t, strings.HasSuffix(out, "]\r\n"))
}

func TestParseFrameRoundTrip(t *testing.T) {
	in := Frame{
		Device: "PostureMonitor",
		State:  "Sleeping",
		Alert:  "Normal",
		Tilt:   0,
		Accel:  [3]int16{-32768, 0, 32767},
		Color:  [3]uint8{0, 0, 0},
		LED:    false,
		Count:  0xFFFFFFFF,
		Time:   10,
	}
	w := NewLineWriter()
	AppendFrame(w, in)

	out, err := ParseFrame(string(w.Result()))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"prompt", "> "},
		{"unbracketed", "dev=x state=Sleeping cnt=1 t=2"},
		{"missing cnt", "[state=Sleeping t=2]"},
		{"bad led", "[state=Sleeping led=maybe cnt=1 t=2]"},
		{"bad accel", "[state=Sleeping accel=(1,2) cnt=1 t=2]"},
		{"bad neo", "[state=Sleeping neo=(300,0,0) cnt=1 t=2]"},
		{"no equals", "[state=Sleeping junk cnt=1 t=2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestParseFrameIgnoresUnknownKeys(t *testing.T) {
	f, err := ParseFrame("[state=Monitoring gyro=(1,2,3) cnt=4 t=5]\r\n")
	require.NoError(t, err)
	assert.Equal(t, "Monitoring", f.State)
	assert.Equal(t, uint32(4), f.Count)
	assert.Equal(t, uint32(5), f.Time)
}
