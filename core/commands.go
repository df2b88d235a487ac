package core

import (
	"errors"
	"strconv"

	"posturemon/protocol"
)

// registerCommands installs the console verbs. Handlers run inside Tick, on
// the loop that owns the Device.
func (d *Device) registerCommands() {
	r := d.registry

	r.Register("help", "", "Show this list", d.cmdHelp)

	r.Register("device.start", "", "Start monitoring", d.cmdDeviceStart)
	r.Register("device.cal_zero", "", "Calibrate zero orientation", d.cmdDeviceCalZero)
	r.Register("device.sleep", "", "Enter sleep mode", d.cmdDeviceSleep)
	r.Register("device.status", "", "Show device status", d.cmdDeviceStatus)

	r.Register("state.get", "", "Show device state", d.cmdStateGet)
	r.Register("state.set", "<sleep|monitor|calib>", "Request a state transition", d.cmdStateSet)

	r.Register("gpio.on", "", "Status LED on", d.cmdGPIOOn)
	r.Register("gpio.off", "", "Status LED off", d.cmdGPIOOff)
	r.Register("neo.color", "<r> <g> <b>", "Set indicator colour", d.cmdNeoColor)
	r.Register("neo.off", "", "Indicator off", d.cmdNeoOff)

	r.Register("imu.init", "", "Wake the motion sensor", d.cmdIMUInit)
	r.Register("imu.whoami", "", "Read sensor identity", d.cmdIMUWhoAmI)
	r.Register("imu.read", "", "Read accel and gyro", d.cmdIMURead)
	r.Register("cal.get", "", "Show calibration offsets", d.cmdCalGet)

	r.Register("stream.start", "", "Start telemetry stream", d.cmdStreamStart)
	r.Register("stream.stop", "", "Stop telemetry stream", d.cmdStreamStop)

	r.Register("debug.events", "", "Dump recent events", d.cmdDebugEvents)
}

func (d *Device) cmdHelp(args []string, r *Reply) error {
	r.Println("Posture Monitor Commands:")
	r.Write([]byte(d.registry.Help()))
	return nil
}

func (d *Device) cmdDeviceStart(args []string, r *Reply) error {
	if err := d.enter(Monitoring, "device.start"); err != nil {
		return err
	}
	r.OK("Posture Monitor started")
	return nil
}

func (d *Device) cmdDeviceCalZero(args []string, r *Reply) error {
	if err := d.enter(Calibrating, "device.cal_zero"); err != nil {
		return err
	}
	r.OK("Calibrating zero orientation...")
	return nil
}

func (d *Device) cmdDeviceSleep(args []string, r *Reply) error {
	if err := d.enter(Sleeping, "device.sleep"); err != nil {
		return err
	}
	r.OK("Sleep mode")
	return nil
}

func (d *Device) cmdDeviceStatus(args []string, r *Reply) error {
	r.Println("Device: " + d.cfg.Name)
	r.Println("State: " + d.state.String())

	w := r.Line()
	w.String("Alert: ")
	w.String(d.alert.String())
	w.String(" (tilt=")
	w.Tenths(d.tilt)
	w.String(protocol.DegreeSign)
	w.Byte(')')
	r.Send()

	w = r.Line()
	w.String("Offsets: ")
	w.Triple(int64(d.offsets.X), int64(d.offsets.Y), int64(d.offsets.Z))
	r.Send()

	w = r.Line()
	w.String("Gyro: ")
	w.Triple(int64(d.gyro.X), int64(d.gyro.Y), int64(d.gyro.Z))
	r.Send()

	r.Println("Link: " + d.linkMode.String())

	w = r.Line()
	w.String("Uptime: ")
	w.Uint(uint64(d.clock.Now()))
	w.String(" ms")
	r.Send()
	return nil
}

func (d *Device) cmdStateGet(args []string, r *Reply) error {
	r.Println("State = " + d.state.String())
	return nil
}

func (d *Device) cmdStateSet(args []string, r *Reply) error {
	if len(args) < 2 {
		return UsageError("state.set <sleep|monitor|calib>")
	}
	to, ok := ParseState(args[1])
	if !ok {
		return errors.New("Unknown state")
	}
	if err := d.enter(to, "state.set"); err != nil {
		return err
	}
	r.OK("State = " + to.String())
	return nil
}

func (d *Device) cmdGPIOOn(args []string, r *Reply) error {
	if err := d.writeLED(true); err != nil {
		return errors.New("LED write failed")
	}
	r.OK("LED ON")
	return nil
}

func (d *Device) cmdGPIOOff(args []string, r *Reply) error {
	if err := d.writeLED(false); err != nil {
		return errors.New("LED write failed")
	}
	r.OK("LED OFF")
	return nil
}

func (d *Device) cmdNeoColor(args []string, r *Reply) error {
	if len(args) < 4 {
		return UsageError("neo.color <r> <g> <b>")
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(args[i+1], 10, 8)
		if err != nil {
			return errors.New("Invalid RGB values")
		}
		rgb[i] = uint8(v)
	}
	if err := d.setColor(Color{R: rgb[0], G: rgb[1], B: rgb[2]}); err != nil {
		return errors.New("Indicator write failed")
	}

	w := r.Line()
	w.String("OK [Neopixel RGB=")
	w.Triple(int64(rgb[0]), int64(rgb[1]), int64(rgb[2]))
	w.Byte(']')
	r.Send()
	return nil
}

func (d *Device) cmdNeoOff(args []string, r *Reply) error {
	if err := d.setColor(ColorOff); err != nil {
		return errors.New("Indicator write failed")
	}
	r.OK("Neopixel OFF")
	return nil
}

func (d *Device) cmdIMUInit(args []string, r *Reply) error {
	if err := d.board.Sensor.Wake(); err != nil {
		return errors.New("Failed to wake MPU6050")
	}
	r.OK("MPU6050 woken")
	return nil
}

func (d *Device) cmdIMUWhoAmI(args []string, r *Reply) error {
	id, err := d.board.Sensor.ReadIdentity()
	if err != nil {
		return errors.New("I2C read failed")
	}
	d.identity = id
	w := r.Line()
	w.String("WHO_AM_I = ")
	w.Hex8(id)
	r.Send()
	return nil
}

func (d *Device) cmdIMURead(args []string, r *Reply) error {
	accel, err := d.board.Sensor.ReadAccel()
	if err != nil {
		return errors.New("Failed to read IMU")
	}
	w := r.Line()
	w.String("accel: x=")
	w.Int(int64(accel.X))
	w.String(" y=")
	w.Int(int64(accel.Y))
	w.String(" z=")
	w.Int(int64(accel.Z))
	r.Send()

	gyro, err := d.board.Sensor.ReadGyro()
	if err != nil {
		r.Println("gyro: unavailable")
		return nil
	}
	w = r.Line()
	w.String("gyro: x=")
	w.Int(int64(gyro.X))
	w.String(" y=")
	w.Int(int64(gyro.Y))
	w.String(" z=")
	w.Int(int64(gyro.Z))
	r.Send()
	return nil
}

func (d *Device) cmdCalGet(args []string, r *Reply) error {
	w := r.Line()
	w.String("Offsets = ")
	w.Triple(int64(d.offsets.X), int64(d.offsets.Y), int64(d.offsets.Z))
	r.Send()
	return nil
}

func (d *Device) cmdStreamStart(args []string, r *Reply) error {
	r.Println("[Switching to streaming mode...]")
	d.SetLinkMode(LinkStreaming)
	return nil
}

func (d *Device) cmdStreamStop(args []string, r *Reply) error {
	r.Println("[Switching to CLI mode...]")
	d.SetLinkMode(LinkCommand)
	return nil
}

func (d *Device) cmdDebugEvents(args []string, r *Reply) error {
	if d.events.Total() == 0 {
		r.Println("No events")
		return nil
	}
	r.Println("Events (" + protocol.Utoa(d.events.Total()) + " recorded):")
	d.events.Dump(func(line string) {
		r.Println("  " + line)
	})
	return nil
}
