// Package protocol implements the ASCII wire format spoken on the device link:
// CR/LF terminated command lines in, responses and telemetry frames out.
package protocol

// Version represents the posturemon firmware version
const Version = "0.3.0"

// Wire constants
const (
	LineMax   = 256 // Longest line the device ever emits
	CRLF      = "\r\n"
	Prompt    = "> "
	ETX       = 0x03 // Ctrl-C, ends streaming when the escape is enabled
	Backspace = 0x08
	Delete    = 0x7F

	// Echoed for a deleted character: back, blank, back
	EraseSeq = "\b \b"

	// Degree sign as emitted after the tilt value
	DegreeSign = "°"
)

// Response prefixes
const (
	OKPrefix    = "OK"
	ErrorPrefix = "ERROR: "
)

// IsLineEnd reports whether b terminates a command line
func IsLineEnd(b byte) bool {
	return b == '\r' || b == '\n'
}

// IsErase reports whether b deletes the previous character
func IsErase(b byte) bool {
	return b == Backspace || b == Delete
}

// IsPrintable reports whether b is graphic ASCII or space
func IsPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}
