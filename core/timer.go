package core

// Clock is the millisecond tick clock. It advances by a fixed step per loop
// iteration and wraps at 2^32.
type Clock struct {
	now  uint32
	step uint32
}

// NewClock creates a clock advancing stepMS per Advance
func NewClock(stepMS uint32) Clock {
	return Clock{step: stepMS}
}

// Advance moves the clock forward by one tick and returns the new time
func (c *Clock) Advance() uint32 {
	c.now += c.step
	return c.now
}

// Now returns the current time in milliseconds
func (c *Clock) Now() uint32 {
	return c.now
}

// Elapsed returns the milliseconds from since to now. Unsigned subtraction
// keeps it correct across a counter wrap.
func Elapsed(now, since uint32) uint32 {
	return now - since
}
