package core

import (
	"testing"
)

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	pins    map[GPIOPin]bool
	outputs map[GPIOPin]bool
	pullups map[GPIOPin]bool
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		pins:    make(map[GPIOPin]bool),
		outputs: make(map[GPIOPin]bool),
		pullups: make(map[GPIOPin]bool),
	}
}

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.outputs[pin] = true
	m.pins[pin] = false
	return nil
}

func (m *MockGPIODriver) ConfigureInputPullUp(pin GPIOPin) error {
	m.pullups[pin] = true
	m.pins[pin] = true
	return nil
}

func (m *MockGPIODriver) SetPin(pin GPIOPin, value bool) error {
	m.pins[pin] = value
	return nil
}

func (m *MockGPIODriver) ReadPin(pin GPIOPin) bool {
	return m.pins[pin]
}

func TestPinOutput(t *testing.T) {
	mockDriver := NewMockGPIODriver()

	pin := GPIOPin(15)
	out, err := NewPinOutput(mockDriver, pin)
	if err != nil {
		t.Fatalf("NewPinOutput failed: %v", err)
	}
	if !mockDriver.outputs[pin] {
		t.Error("Pin was not configured as output")
	}

	// Test set high
	if err := out.Set(true); err != nil {
		t.Fatalf("Set(true) failed: %v", err)
	}
	if !mockDriver.pins[pin] {
		t.Errorf("Expected pin to be high, got low")
	}

	// Test set low
	if err := out.Set(false); err != nil {
		t.Fatalf("Set(false) failed: %v", err)
	}
	if mockDriver.pins[pin] {
		t.Errorf("Expected pin to be low, got high")
	}
}

func TestPinInputActiveLow(t *testing.T) {
	mockDriver := NewMockGPIODriver()

	pin := GPIOPin(14)
	in, err := NewPinInput(mockDriver, pin)
	if err != nil {
		t.Fatalf("NewPinInput failed: %v", err)
	}
	if !mockDriver.pullups[pin] {
		t.Error("Pin was not configured with pull-up")
	}

	// Released: pulled up
	if in.Level() != High {
		t.Errorf("Expected High when released, got %v", in.Level())
	}

	// Pressed: shorted to ground
	mockDriver.pins[pin] = false
	if in.Level() != Low {
		t.Errorf("Expected Low when pressed, got %v", in.Level())
	}
}

// mockPWMDriver records duty cycles per pin
type mockPWMDriver struct {
	duty       map[PWMPin]PWMValue
	configured map[PWMPin]uint32
	disabled   map[PWMPin]bool
}

func newMockPWMDriver() *mockPWMDriver {
	return &mockPWMDriver{
		duty:       make(map[PWMPin]PWMValue),
		configured: make(map[PWMPin]uint32),
		disabled:   make(map[PWMPin]bool),
	}
}

func (m *mockPWMDriver) ConfigureHardwarePWM(pin PWMPin, periodUS uint32) (uint32, error) {
	m.configured[pin] = periodUS
	return periodUS, nil
}

func (m *mockPWMDriver) SetDutyCycle(pin PWMPin, value PWMValue) error {
	m.duty[pin] = value
	return nil
}

func (m *mockPWMDriver) GetMaxValue() uint32 { return 65535 }

func (m *mockPWMDriver) DisablePWM(pin PWMPin) error {
	m.disabled[pin] = true
	return nil
}

func TestPWMIndicator(t *testing.T) {
	drv := newMockPWMDriver()
	pins := [3]PWMPin{17, 27, 22}

	ind, err := NewPWMIndicator(drv, pins, 1000)
	if err != nil {
		t.Fatalf("NewPWMIndicator failed: %v", err)
	}
	for _, pin := range pins {
		if drv.configured[pin] != 1000 {
			t.Errorf("Pin %d not configured", pin)
		}
		if drv.duty[pin] != 0 {
			t.Errorf("Pin %d should start dark, duty %d", pin, drv.duty[pin])
		}
	}

	if err := ind.SetColor(Color{R: 255, G: 0, B: 51}); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	if drv.duty[17] != 65535 || drv.duty[27] != 0 || drv.duty[22] != 13107 {
		t.Errorf("Unexpected duties %v", drv.duty)
	}

	if err := ind.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	for _, pin := range pins {
		if !drv.disabled[pin] {
			t.Errorf("Pin %d not released", pin)
		}
	}
}
