//go:build !tinygo

package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFrame is returned for lines that are not bracketed telemetry
	ErrNotFrame = errors.New("not a telemetry frame")
)

// ParseFrame decodes a line produced by AppendFrame. Trailing CR/LF is
// ignored, unknown keys are skipped, and state, cnt and t are mandatory.
func ParseFrame(line string) (Frame, error) {
	var f Frame

	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return f, ErrNotFrame
	}
	body := line[1 : len(line)-1]

	var haveState, haveCount, haveTime bool
	for _, field := range strings.Fields(body) {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			return f, fmt.Errorf("field %q: missing '='", field)
		}

		var err error
		switch key {
		case "dev":
			f.Device = val
		case "state":
			f.State = val
			haveState = true
		case "alert":
			f.Alert = val
		case "tilt":
			var v float64
			v, err = strconv.ParseFloat(strings.TrimSuffix(val, DegreeSign), 32)
			f.Tilt = float32(v)
		case "accel":
			var t [3]int64
			t, err = parseTriple(val, 16)
			f.Accel = [3]int16{int16(t[0]), int16(t[1]), int16(t[2])}
		case "neo":
			var t [3]int64
			t, err = parseTriple(val, 9)
			if err == nil && (t[0] < 0 || t[1] < 0 || t[2] < 0) {
				err = errors.New("negative colour component")
			}
			f.Color = [3]uint8{uint8(t[0]), uint8(t[1]), uint8(t[2])}
		case "led":
			switch val {
			case "on":
				f.LED = true
			case "off":
				f.LED = false
			default:
				err = errors.New("expected on or off")
			}
		case "cnt":
			var v uint64
			v, err = strconv.ParseUint(val, 10, 32)
			f.Count = uint32(v)
			haveCount = true
		case "t":
			var v uint64
			v, err = strconv.ParseUint(val, 10, 32)
			f.Time = uint32(v)
			haveTime = true
		}
		if err != nil {
			return f, fmt.Errorf("field %s: %w", key, err)
		}
	}

	if !haveState || !haveCount || !haveTime {
		return f, errors.New("frame missing state, cnt or t")
	}
	return f, nil
}

// parseTriple parses "(a,b,c)"
func parseTriple(s string, bits int) ([3]int64, error) {
	var out [3]int64
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return out, fmt.Errorf("%q: expected (a,b,c)", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("%q: expected 3 components", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, bits)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
