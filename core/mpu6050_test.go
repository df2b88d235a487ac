package core

import (
	"bytes"
	"testing"
)

// fakeBus answers register reads from a 128-byte register file
type fakeBus struct {
	regs   [128]byte
	writes [][]byte
	addr   uint16
	err    error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.addr = addr
	b.writes = append(b.writes, append([]byte(nil), w...))
	if len(r) > 0 {
		copy(r, b.regs[w[0]:])
	}
	return nil
}

func TestMPU6050Wake(t *testing.T) {
	bus := &fakeBus{}
	m := NewMPU6050(bus, 0x69)

	if err := m.Wake(); err != nil {
		t.Fatalf("Wake failed: %v", err)
	}
	if bus.addr != 0x69 {
		t.Errorf("Expected address 0x69, got 0x%02x", bus.addr)
	}
	if len(bus.writes) != 1 || !bytes.Equal(bus.writes[0], []byte{0x6B, 0x00}) {
		t.Errorf("Expected PWR_MGMT_1 <- 0, got %v", bus.writes)
	}
}

func TestMPU6050ReadIdentity(t *testing.T) {
	bus := &fakeBus{}
	bus.regs[0x75] = 0x68
	m := NewMPU6050(bus, 0x68)

	id, err := m.ReadIdentity()
	if err != nil {
		t.Fatalf("ReadIdentity failed: %v", err)
	}
	if id != MPU6050Identity {
		t.Errorf("Expected 0x68, got 0x%02x", id)
	}
}

func TestMPU6050ReadBigEndian(t *testing.T) {
	bus := &fakeBus{}
	// Accel: 0x0102, -2, 16384
	copy(bus.regs[0x3B:], []byte{0x01, 0x02, 0xFF, 0xFE, 0x40, 0x00})
	// Gyro: -32768, 32767, 0
	copy(bus.regs[0x43:], []byte{0x80, 0x00, 0x7F, 0xFF, 0x00, 0x00})
	m := NewMPU6050(bus, 0x68)

	accel, err := m.ReadAccel()
	if err != nil {
		t.Fatalf("ReadAccel failed: %v", err)
	}
	if accel != (Sample{X: 0x0102, Y: -2, Z: 16384}) {
		t.Errorf("Unexpected accel %+v", accel)
	}

	gyro, err := m.ReadGyro()
	if err != nil {
		t.Fatalf("ReadGyro failed: %v", err)
	}
	if gyro != (Sample{X: -32768, Y: 32767, Z: 0}) {
		t.Errorf("Unexpected gyro %+v", gyro)
	}
}

func TestMPU6050Errors(t *testing.T) {
	m := NewMPU6050(&fakeBus{err: errFake}, 0x68)
	if _, err := m.ReadAccel(); err != errFake {
		t.Errorf("Expected bus error, got %v", err)
	}

	m = NewMPU6050(nil, 0x68)
	if err := m.Wake(); err == nil {
		t.Error("Expected error without a bus")
	}
}
