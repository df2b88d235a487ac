package config

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"tinygo.org/x/drivers/mpu6050"
)

// MPU6050 default I2C address (AD0 low)
const DefaultIMUAddress = mpu6050.Address

// MaxNameLen bounds the device name so a telemetry frame fits one line
const MaxNameLen = 32

// LoadConfig parses a JSON device profile on top of the default profile.
// Keys absent from the document keep their default values.
func LoadConfig(jsonData []byte) (*DeviceConfig, error) {
	config := *DefaultPostureConfig()

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *DeviceConfig) {
	def := DefaultPostureConfig()

	if config.Name == "" {
		config.Name = def.Name
	}
	if config.TickMS == 0 {
		config.TickMS = def.TickMS
	}

	// Gesture timing. SettleMS may legitimately be zero.
	if config.Gesture.DebounceMS == 0 {
		config.Gesture.DebounceMS = def.Gesture.DebounceMS
	}
	if config.Gesture.LongPressMS == 0 {
		config.Gesture.LongPressMS = def.Gesture.LongPressMS
	}

	if config.Calibration.Samples == 0 {
		config.Calibration.Samples = def.Calibration.Samples
	}
	if config.Calibration.Gravity == 0 {
		config.Calibration.Gravity = def.Calibration.Gravity
	}

	if config.Alert.WarningDeg == 0 {
		config.Alert.WarningDeg = def.Alert.WarningDeg
	}
	if config.Alert.AlertDeg == 0 {
		config.Alert.AlertDeg = def.Alert.AlertDeg
	}
	if config.Alert.WarningBlinkMS == 0 {
		config.Alert.WarningBlinkMS = def.Alert.WarningBlinkMS
	}
	if config.Alert.AlertBlinkMS == 0 {
		config.Alert.AlertBlinkMS = def.Alert.AlertBlinkMS
	}

	// A profile that sets no colours at all gets the default palette
	if config.Colors == (ColorConfig{}) {
		config.Colors = def.Colors
	}

	if config.Console.BufferSize == 0 {
		config.Console.BufferSize = def.Console.BufferSize
	}
	if config.Console.MaxTokens == 0 {
		config.Console.MaxTokens = def.Console.MaxTokens
	}
	if config.Console.BytesPerTick == 0 {
		config.Console.BytesPerTick = def.Console.BytesPerTick
	}
	if config.Console.Prompt == "" {
		config.Console.Prompt = def.Console.Prompt
	}

	if config.Telemetry.IntervalMS == 0 {
		config.Telemetry.IntervalMS = def.Telemetry.IntervalMS
	}

	if config.Bus.I2CFrequency == 0 {
		config.Bus.I2CFrequency = def.Bus.I2CFrequency
	}
	if config.Bus.IMUAddress == 0 {
		config.Bus.IMUAddress = def.Bus.IMUAddress
	}
	if config.Bus.UARTBaud == 0 {
		config.Bus.UARTBaud = def.Bus.UARTBaud
	}
}

// Validate rejects profiles the core cannot run with
func (c *DeviceConfig) Validate() error {
	if len(c.Name) > MaxNameLen {
		return errors.New("name must be at most 32 bytes")
	}
	// The name is a space-separated frame field
	if strings.IndexFunc(c.Name, badNameRune) >= 0 {
		return errors.New("name must not contain whitespace, control characters or brackets")
	}
	if c.TickMS == 0 {
		return errors.New("tick_ms must be positive")
	}
	if c.Gesture.LongPressMS <= c.Gesture.DebounceMS {
		return errors.New("long_press_ms must exceed debounce_ms")
	}
	// Per-axis sums are int32: 65535 full-scale samples still fit
	if c.Calibration.Samples <= 0 || c.Calibration.Samples > 65535 {
		return errors.New("calibration samples must be between 1 and 65535")
	}
	if c.Alert.WarningDeg <= 0 || c.Alert.AlertDeg <= c.Alert.WarningDeg || c.Alert.AlertDeg > 180 {
		return errors.New("alert thresholds must satisfy 0 < warning < alert <= 180")
	}
	if c.Alert.WarningBlinkMS == 0 || c.Alert.AlertBlinkMS == 0 {
		return errors.New("blink half-periods must be positive")
	}
	if c.Console.BufferSize <= 0 || c.Console.MaxTokens <= 0 || c.Console.BytesPerTick <= 0 {
		return errors.New("console buffer, token and byte limits must be positive")
	}
	if c.Telemetry.IntervalMS == 0 {
		return errors.New("telemetry interval must be positive")
	}
	return nil
}

// BuildSwitch interprets a boolean string set at link time with -X.
// Empty or unparsable values yield fallback.
func BuildSwitch(value string, fallback bool) bool {
	on, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return on
}

func badNameRune(r rune) bool {
	return unicode.IsSpace(r) || !unicode.IsPrint(r) || r == '[' || r == ']'
}

// DefaultPostureConfig returns the posture monitor profile: ESP32-C6 style
// wiring translated to Pico pin numbers, MPU-6050 at 0x68, 10 ms tick.
func DefaultPostureConfig() *DeviceConfig {
	return &DeviceConfig{
		Name:   "PostureMonitor",
		TickMS: 10,
		Gesture: GestureConfig{
			DebounceMS:  50,
			LongPressMS: 3000,
			SettleMS:    10,
		},
		Calibration: CalibrationConfig{
			Samples: 100,
			Gravity: 16384, // ±2g range: 16384 LSB/g
		},
		Alert: AlertConfig{
			WarningDeg:     30,
			AlertDeg:       60,
			WarningBlinkMS: 500, // 1 Hz
			AlertBlinkMS:   100, // 5 Hz
		},
		Colors: ColorConfig{
			Monitoring:  RGB{0, 30, 0},
			Warning:     RGB{30, 30, 0},
			Alert:       RGB{30, 0, 0},
			Calibrating: RGB{30, 30, 0},
			Fault:       RGB{30, 0, 0},
		},
		Console: ConsoleConfig{
			BufferSize:   128,
			MaxTokens:    5,
			BytesPerTick: 64,
			Echo:         true,
			Prompt:       "> ",
		},
		Telemetry: TelemetryConfig{
			IntervalMS:   100,
			StreamEscape: false,
		},
		Pins: PinConfig{
			LED:       15,
			Button:    14,
			Neopixel:  16,
			Indicator: [3]uint8{17, 27, 22},
			SDA:       4,
			SCL:       5,
			UARTTX:    0,
			UARTRX:    1,
		},
		Bus: BusConfig{
			I2CFrequency: 100000,
			IMUAddress:   DefaultIMUAddress,
			SerialDevice: "/dev/ttyS0",
			UARTBaud:     115200,
		},
	}
}
