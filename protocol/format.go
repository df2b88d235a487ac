package protocol

// Number formatting without fmt or strconv, keeps the MCU image small.

const hexDigits = "0123456789ABCDEF"

// appendUint appends the decimal form of n
func appendUint(dst []byte, n uint64) []byte {
	if n == 0 {
		return append(dst, '0')
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[pos:]...)
}

// appendInt appends the decimal form of n, with a leading '-' when negative
func appendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// Two's complement negation also covers math.MinInt64
		return appendUint(dst, uint64(^n)+1)
	}
	return appendUint(dst, uint64(n))
}

// appendTenths appends v with exactly one decimal, rounding half away from zero
func appendTenths(dst []byte, v float32) []byte {
	if v != v {
		return append(dst, "NaN"...)
	}

	negative := v < 0
	if negative {
		v = -v
	}
	tenths := uint64(float64(v)*10 + 0.5)
	if negative && tenths != 0 {
		dst = append(dst, '-')
	}

	dst = appendUint(dst, tenths/10)
	dst = append(dst, '.')
	return append(dst, byte('0'+tenths%10))
}

// appendHex8 appends v as 0xNN
func appendHex8(dst []byte, v uint8) []byte {
	return append(dst, '0', 'x', hexDigits[v>>4], hexDigits[v&0x0F])
}

// Itoa converts an integer to a string
func Itoa(n int) string {
	var tmp [20]byte
	return string(appendInt(tmp[:0], int64(n)))
}

// Utoa converts an unsigned integer to a string
func Utoa(n uint32) string {
	var tmp [10]byte
	return string(appendUint(tmp[:0], uint64(n)))
}

// FormatTenths formats v with one decimal place
func FormatTenths(v float32) string {
	var tmp [24]byte
	return string(appendTenths(tmp[:0], v))
}
