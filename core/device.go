package core

import (
	"errors"

	"posturemon/config"
	"posturemon/protocol"
)

// ErrTransition is matched by errors for transitions outside the table
var ErrTransition = errors.New("transition not allowed")

type transitionError struct {
	from, to DeviceState
}

func (e transitionError) Error() string {
	return "Cannot go from " + e.from.String() + " to " + e.to.String()
}

func (e transitionError) Is(target error) bool { return target == ErrTransition }

// Board bundles the hardware boundary the Device drives
type Board struct {
	Sensor    MotionSensor
	Button    DigitalInput
	LED       DigitalOutput
	Indicator Indicator
	Link      Link
}

// Status is a point-in-time copy of the device state
type Status struct {
	Name       string
	State      DeviceState
	Alert      AlertLevel
	Link       LinkMode
	Tilt       float32
	Accel      Sample
	Gyro       Sample
	Offsets    Offsets
	LED        bool
	Color      Color
	Uptime     uint32
	Frames     uint32
	CalSamples int
	Identity   uint8
	Halted     bool
	HaltReason string
}

// Device is the posture monitor control core. It is owned by a single loop
// that calls Tick once per TickMS; nothing in it blocks or locks.
type Device struct {
	cfg   *config.DeviceConfig
	board Board

	clock    Clock
	state    DeviceState
	alert    AlertLevel
	linkMode LinkMode

	gesture   *GestureDetector
	cal       Calibrator
	blink     Blinker
	console   *Console
	registry  *CommandRegistry
	telemetry Telemetry
	events    EventRing

	accel, gyro  Sample
	offsets      Offsets
	tilt         float32
	identity     uint8
	accelFailing bool
	gyroFailing  bool

	ledOn    bool
	ledKnown bool
	color    Color

	halted     bool
	haltReason string
}

// NewDevice builds a device in the Sleeping state with the link in command
// mode. Every Board member is required.
func NewDevice(cfg *config.DeviceConfig, board Board) (*Device, error) {
	if cfg == nil {
		return nil, errors.New("device: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case board.Sensor == nil:
		return nil, errors.New("device: board has no motion sensor")
	case board.Button == nil:
		return nil, errors.New("device: board has no button")
	case board.LED == nil:
		return nil, errors.New("device: board has no LED")
	case board.Indicator == nil:
		return nil, errors.New("device: board has no indicator")
	case board.Link == nil:
		return nil, errors.New("device: board has no link")
	}

	d := &Device{
		cfg:       cfg,
		board:     board,
		clock:     NewClock(cfg.TickMS),
		state:     Sleeping,
		alert:     AlertNormal,
		linkMode:  LinkCommand,
		gesture:   NewGestureDetector(cfg.Gesture),
		cal:       NewCalibrator(cfg.Calibration),
		blink:     NewBlinker(cfg.Alert),
		registry:  NewCommandRegistry(),
		telemetry: NewTelemetry(cfg.Telemetry),
	}
	d.console = NewConsole(cfg.Console, d.registry, board.Link)
	d.registerCommands()

	return d, nil
}

// Init puts the outputs in their Sleeping state, wakes the sensor and
// prints the banner. Sensor failures are logged and do not stop the device.
func (d *Device) Init() {
	d.writeLED(false)
	d.setColor(ColorOff)

	if err := d.board.Sensor.Wake(); err != nil {
		DebugPrintln("[INIT] IMU wake failed: " + err.Error())
	}
	if id, err := d.board.Sensor.ReadIdentity(); err != nil {
		DebugPrintln("[INIT] IMU identity read failed: " + err.Error())
	} else {
		d.identity = id
		if id != MPU6050Identity {
			DebugPrintln("[INIT] unexpected IMU identity " + hex8(id))
		}
	}

	r := d.console.Reply()
	r.Println(d.cfg.Name + " v" + protocol.Version)
	r.Println("Type 'help' for commands")
	r.Println("")
	d.console.Prompt()

	DebugPrintln("[INIT] " + d.cfg.Name + " ready, tick=" + protocol.Utoa(d.cfg.TickMS) + "ms")
}

// Tick advances the clock by one period and runs every component once, in
// a fixed order: gestures, state machine, sampling, outputs, link.
func (d *Device) Tick() {
	if d.halted {
		return
	}
	now := d.clock.Advance()

	d.handlePress(d.gesture.Poll(d.board.Button.Level(), now))

	switch d.state {
	case Monitoring:
		d.monitor()
	case Calibrating:
		d.calibrate()
	}

	d.driveOutputs(now)

	if !d.checkInvariants() {
		return
	}

	d.serviceLink(now)
}

// Step runs one Tick, converting a panic into a Halt. It returns false once
// the device has halted.
func (d *Device) Step() (running bool) {
	defer func() {
		if r := recover(); r != nil {
			d.Halt("panic in control loop")
			running = false
		}
	}()
	d.Tick()
	return !d.halted
}

// Halt stops the device for good: LED off, indicator shows the fault
// colour, Tick becomes a no-op.
func (d *Device) Halt(reason string) {
	if d.halted {
		return
	}
	d.halted = true
	d.haltReason = reason
	d.events.Record(EvtFault, d.clock.Now(), uint32(d.state), 0)
	DebugPrintln("[FAULT] " + reason)

	d.writeLED(false)
	d.setColor(colorOf(d.cfg.Colors.Fault))
}

// Halted reports whether Halt has been called
func (d *Device) Halted() bool {
	return d.halted
}

// State returns the current device state
func (d *Device) State() DeviceState {
	return d.state
}

// LinkMode returns the current link owner
func (d *Device) LinkMode() LinkMode {
	return d.linkMode
}

// Snapshot returns a copy of the observable state
func (d *Device) Snapshot() Status {
	return Status{
		Name:       d.cfg.Name,
		State:      d.state,
		Alert:      d.alert,
		Link:       d.linkMode,
		Tilt:       d.tilt,
		Accel:      d.accel,
		Gyro:       d.gyro,
		Offsets:    d.offsets,
		LED:        d.ledOn,
		Color:      d.color,
		Uptime:     d.clock.Now(),
		Frames:     d.telemetry.Count(),
		CalSamples: d.cal.Count(),
		Identity:   d.identity,
		Halted:     d.halted,
		HaltReason: d.haltReason,
	}
}

// Events returns the recorded events, oldest first
func (d *Device) Events() []Event {
	var out []Event
	d.events.Each(func(e Event) { out = append(out, e) })
	return out
}

// SetLinkMode hands the link to the console or the telemetry streamer.
// Leaving streaming clears any half-typed command.
func (d *Device) SetLinkMode(mode LinkMode) {
	if mode == d.linkMode || mode >= numLinkModes {
		return
	}
	from := d.linkMode
	d.linkMode = mode
	d.events.Record(EvtLink, d.clock.Now(), uint32(from), uint32(mode))
	DebugPrintln("[LINK] " + from.String() + " -> " + mode.String())

	if mode == LinkStreaming {
		d.telemetry.Start()
	} else {
		d.console.Clear()
	}
}

// handlePress applies a gesture to the state machine
func (d *Device) handlePress(ev PressEvent) {
	if ev == PressNone {
		return
	}
	now := d.clock.Now()

	var to DeviceState
	switch {
	case d.state == Sleeping && ev == PressLong:
		to = Monitoring
	case d.state == Monitoring && ev == PressShort:
		to = Calibrating
	case d.state == Monitoring && ev == PressLong:
		to = Sleeping
	default:
		// Short press while asleep, or any press while calibrating
		d.events.Record(EvtDropped, now, uint32(ev), uint32(d.state))
		DebugPrintln("[STATE] " + ev.String() + " press ignored in " + d.state.String())
		return
	}

	d.events.Record(EvtPress, now, uint32(ev), uint32(d.state))
	if err := d.enter(to, ev.String()+" press"); err != nil {
		DebugPrintln("[STATE] " + err.Error())
	}
}

// enter performs a requested transition from the table and its entry actions
func (d *Device) enter(to DeviceState, cause string) error {
	if !transitionAllowed(d.state, to) {
		return transitionError{from: d.state, to: to}
	}
	d.commit(to, cause)
	return nil
}

// commit switches state unconditionally and runs the entry actions
func (d *Device) commit(to DeviceState, cause string) {
	from := d.state
	d.state = to
	d.events.Record(EvtState, d.clock.Now(), uint32(from), uint32(to))
	DebugPrintln("[STATE] " + from.String() + " -> " + to.String() + " (" + cause + ")")

	d.blink.Stop()
	d.alert = AlertNormal

	switch to {
	case Calibrating:
		d.cal.Begin()
		d.setLED(false)
	case Sleeping:
		d.setLED(false)
	}
	d.applyIndicator()
}

// monitor samples the sensor and updates tilt and alert level
func (d *Device) monitor() {
	d.sampleAccel()
	d.sampleGyro()

	d.tilt = Tilt(d.accel, d.offsets)
	d.setAlert(ClassifyTilt(d.tilt, d.cfg.Alert.WarningDeg, d.cfg.Alert.AlertDeg))
}

// calibrate feeds one fresh sample to the calibrator
func (d *Device) calibrate() {
	if !d.sampleAccel() {
		return // Stale samples would bias the average
	}
	off, done := d.cal.Accumulate(d.accel)
	if !done {
		return
	}

	d.offsets = off
	d.events.Record(EvtCalib, d.clock.Now(), uint32(d.cal.Target()), 0)
	DebugPrintln("[CALIB] offsets x=" + protocol.Itoa(int(off.X)) +
		" y=" + protocol.Itoa(int(off.Y)) +
		" z=" + protocol.Itoa(int(off.Z)))

	d.commit(Monitoring, "calibration complete")
}

// sampleAccel reads the accelerometer. On failure the previous sample is
// kept and the failure is logged once per streak.
func (d *Device) sampleAccel() bool {
	s, err := d.board.Sensor.ReadAccel()
	if err != nil {
		if !d.accelFailing {
			d.accelFailing = true
			d.events.Record(EvtSensor, d.clock.Now(), 0, 0)
			DebugPrintln("[IMU] accel read failed: " + err.Error())
		}
		return false
	}
	if d.accelFailing {
		d.accelFailing = false
		DebugPrintln("[IMU] accel read recovered")
	}
	d.accel = s
	return true
}

// sampleGyro reads the gyroscope with the same stale-on-error policy
func (d *Device) sampleGyro() bool {
	s, err := d.board.Sensor.ReadGyro()
	if err != nil {
		if !d.gyroFailing {
			d.gyroFailing = true
			d.events.Record(EvtSensor, d.clock.Now(), 1, 0)
			DebugPrintln("[IMU] gyro read failed: " + err.Error())
		}
		return false
	}
	if d.gyroFailing {
		d.gyroFailing = false
		DebugPrintln("[IMU] gyro read recovered")
	}
	d.gyro = s
	return true
}

func (d *Device) setAlert(level AlertLevel) {
	if level == d.alert {
		return
	}
	d.events.Record(EvtAlert, d.clock.Now(), uint32(d.alert), uint32(level))
	DebugPrintln("[ALERT] " + d.alert.String() + " -> " + level.String() + " tilt=" + protocol.FormatTenths(d.tilt))
	d.alert = level
	d.applyIndicator()
}

// driveOutputs runs the blink oscillator. The LED belongs to the
// oscillator only while Monitoring; in other states it keeps whatever the
// last transition or command set.
func (d *Device) driveOutputs(now uint32) {
	if d.state == Monitoring {
		d.setLED(d.blink.Tick(d.alert, now))
	}
}

// applyIndicator sets the indicator colour for the current state and level
func (d *Device) applyIndicator() {
	c := d.cfg.Colors
	switch d.state {
	case Sleeping:
		d.setColor(ColorOff)
	case Calibrating:
		d.setColor(colorOf(c.Calibrating))
	case Monitoring:
		switch d.alert {
		case AlertWarning:
			d.setColor(colorOf(c.Warning))
		case AlertAlert:
			d.setColor(colorOf(c.Alert))
		default:
			d.setColor(colorOf(c.Monitoring))
		}
	}
}

func (d *Device) setColor(c Color) error {
	if err := d.board.Indicator.SetColor(c); err != nil {
		DebugPrintln("[OUT] indicator write failed: " + err.Error())
		return err
	}
	d.color = c
	return nil
}

// setLED writes the LED only when the wanted level differs from the last
// one written
func (d *Device) setLED(on bool) {
	if d.ledKnown && d.ledOn == on {
		return
	}
	d.writeLED(on)
}

// writeLED always writes the LED
func (d *Device) writeLED(on bool) error {
	if err := d.board.LED.Set(on); err != nil {
		d.ledKnown = false
		DebugPrintln("[OUT] LED write failed: " + err.Error())
		return err
	}
	d.ledOn = on
	d.ledKnown = true
	return nil
}

// checkInvariants halts the device if its state has been corrupted
func (d *Device) checkInvariants() bool {
	switch {
	case d.state >= numDeviceStates:
		d.Halt("invalid device state")
	case d.alert >= numAlertLevels:
		d.Halt("invalid alert level")
	case d.linkMode >= numLinkModes:
		d.Halt("invalid link mode")
	case d.cal.Count() > d.cal.Target():
		d.Halt("calibrator overran its sample count")
	case d.console.Buffered() > d.console.Capacity():
		d.Halt("command buffer overflow")
	}
	return !d.halted
}

// serviceLink gives the link to exactly one of the console or the
// telemetry streamer, according to the link mode
func (d *Device) serviceLink(now uint32) {
	switch d.linkMode {
	case LinkCommand:
		for i := 0; i < d.cfg.Console.BytesPerTick; i++ {
			b, ok := d.board.Link.TryReadByte()
			if !ok {
				break
			}
			d.console.Feed(b)
			if d.linkMode != LinkCommand {
				break // Streaming starts next tick; leave the rest unread
			}
		}

	case LinkStreaming:
		if d.cfg.Telemetry.StreamEscape {
			d.drainEscape()
		}
		if d.linkMode == LinkStreaming && d.telemetry.Due(now) {
			if err := d.telemetry.Emit(d.board.Link, d.frame(now), now); err != nil {
				DebugPrintln("[LINK] telemetry write failed: " + err.Error())
			}
		}
	}
}

// drainEscape discards input while streaming; ETX stops the stream
func (d *Device) drainEscape() {
	for i := 0; i < d.cfg.Console.BytesPerTick; i++ {
		b, ok := d.board.Link.TryReadByte()
		if !ok {
			return
		}
		if b == protocol.ETX {
			d.console.Execute("stream.stop")
			return
		}
	}
}

func (d *Device) frame(now uint32) protocol.Frame {
	return protocol.Frame{
		Device: d.cfg.Name,
		State:  d.state.String(),
		Alert:  d.alert.String(),
		Tilt:   d.tilt,
		Accel:  [3]int16{d.accel.X, d.accel.Y, d.accel.Z},
		Color:  [3]uint8{d.color.R, d.color.G, d.color.B},
		LED:    d.ledOn,
		Time:   now,
	}
}

func colorOf(rgb config.RGB) Color {
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}
}

func hex8(v uint8) string {
	var w protocol.LineWriter
	w.Hex8(v)
	return string(w.Result())
}
