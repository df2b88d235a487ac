package config

// RGB is an indicator colour, one byte per channel.
type RGB [3]uint8

// GestureConfig holds the button timing thresholds
type GestureConfig struct {
	DebounceMS  uint32 `json:"debounce_ms" yaml:"debounce_ms"`     // Shortest press that counts
	LongPressMS uint32 `json:"long_press_ms" yaml:"long_press_ms"` // Long press threshold
	SettleMS    uint32 `json:"settle_ms" yaml:"settle_ms"`         // Line must be stable this long
}

// CalibrationConfig controls zero-orientation calibration
type CalibrationConfig struct {
	Samples int   `json:"samples" yaml:"samples"` // N samples averaged per run
	Gravity int32 `json:"gravity" yaml:"gravity"` // 1g in sensor counts (vertical axis)
}

// AlertConfig holds tilt thresholds and blink half-periods
type AlertConfig struct {
	WarningDeg     float32 `json:"warning_deg" yaml:"warning_deg"`
	AlertDeg       float32 `json:"alert_deg" yaml:"alert_deg"`
	WarningBlinkMS uint32  `json:"warning_blink_ms" yaml:"warning_blink_ms"`
	AlertBlinkMS   uint32  `json:"alert_blink_ms" yaml:"alert_blink_ms"`
}

// ColorConfig maps device states and alert levels to indicator colours
type ColorConfig struct {
	Monitoring  RGB `json:"monitoring" yaml:"monitoring"`
	Warning     RGB `json:"warning" yaml:"warning"`
	Alert       RGB `json:"alert" yaml:"alert"`
	Calibrating RGB `json:"calibrating" yaml:"calibrating"`
	Fault       RGB `json:"fault" yaml:"fault"`
}

// ConsoleConfig controls the line-oriented command interpreter
type ConsoleConfig struct {
	BufferSize   int    `json:"buffer_size" yaml:"buffer_size"`
	MaxTokens    int    `json:"max_tokens" yaml:"max_tokens"`
	BytesPerTick int    `json:"bytes_per_tick" yaml:"bytes_per_tick"`
	Echo         bool   `json:"echo" yaml:"echo"`
	Prompt       string `json:"prompt" yaml:"prompt"`
}

// TelemetryConfig controls streaming mode
type TelemetryConfig struct {
	IntervalMS uint32 `json:"interval_ms" yaml:"interval_ms"`

	// StreamEscape lets an ETX byte (Ctrl-C) end streaming.
	// When false the link is not read at all while streaming.
	StreamEscape bool `json:"stream_escape" yaml:"stream_escape"`
}

// PinConfig describes board wiring. Targets use the fields they need.
type PinConfig struct {
	LED       uint8    `json:"led" yaml:"led"`
	Button    uint8    `json:"button" yaml:"button"`
	Neopixel  uint8    `json:"neopixel" yaml:"neopixel"`
	Indicator [3]uint8 `json:"indicator_rgb" yaml:"indicator_rgb"` // discrete RGB LED (Linux target)
	SDA       uint8    `json:"sda" yaml:"sda"`
	SCL       uint8    `json:"scl" yaml:"scl"`
	UARTTX    uint8    `json:"uart_tx" yaml:"uart_tx"`
	UARTRX    uint8    `json:"uart_rx" yaml:"uart_rx"`
}

// BusConfig describes the sensor bus and the serial link
type BusConfig struct {
	I2CFrequency uint32 `json:"i2c_frequency" yaml:"i2c_frequency"`
	I2CBus       string `json:"i2c_bus" yaml:"i2c_bus"` // periph bus name, "" = first
	IMUAddress   uint16 `json:"imu_address" yaml:"imu_address"`
	SerialDevice string `json:"serial_device" yaml:"serial_device"`
	UARTBaud     uint32 `json:"uart_baud" yaml:"uart_baud"`
}

// DeviceConfig is the complete device profile
type DeviceConfig struct {
	Name   string `json:"name" yaml:"name"`       // Reported as dev= in telemetry
	TickMS uint32 `json:"tick_ms" yaml:"tick_ms"` // Loop period

	Gesture     GestureConfig     `json:"gesture" yaml:"gesture"`
	Calibration CalibrationConfig `json:"calibration" yaml:"calibration"`
	Alert       AlertConfig       `json:"alert" yaml:"alert"`
	Colors      ColorConfig       `json:"colors" yaml:"colors"`
	Console     ConsoleConfig     `json:"console" yaml:"console"`
	Telemetry   TelemetryConfig   `json:"telemetry" yaml:"telemetry"`
	Pins        PinConfig         `json:"pins" yaml:"pins"`
	Bus         BusConfig         `json:"bus" yaml:"bus"`
}
