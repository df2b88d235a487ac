package protocol

// Frame is one telemetry record as streamed by the device
type Frame struct {
	Device string
	State  string
	Alert  string
	Tilt   float32
	Accel  [3]int16
	Color  [3]uint8
	LED    bool
	Count  uint32
	Time   uint32
}

// AppendFrame renders f into w as a single CRLF-terminated line:
//
//	[dev=PostureMonitor state=Monitoring alert=Normal tilt=3.2° accel=(1,2,3) neo=(0,30,0) led=off cnt=7 t=700]
func AppendFrame(w *LineWriter, f Frame) {
	w.String("[dev=")
	w.String(f.Device)
	w.String(" state=")
	w.String(f.State)
	w.String(" alert=")
	w.String(f.Alert)
	w.String(" tilt=")
	w.Tenths(f.Tilt)
	w.String(DegreeSign)
	w.String(" accel=")
	w.Triple(int64(f.Accel[0]), int64(f.Accel[1]), int64(f.Accel[2]))
	w.String(" neo=")
	w.Triple(int64(f.Color[0]), int64(f.Color[1]), int64(f.Color[2]))
	if f.LED {
		w.String(" led=on")
	} else {
		w.String(" led=off")
	}
	w.String(" cnt=")
	w.Uint(uint64(f.Count))
	w.String(" t=")
	w.Uint(uint64(f.Time))
	w.Byte(']')
	w.String(CRLF)
}
