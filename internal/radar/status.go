// internal/radar/status.go
package radar

// Status is a read-only view over a radar status frame.
// Every accessor is a pure shift-and-mask of the stored bytes.
//
// The radar_power_cfg, motion_rx_state and calibration_enabled formulas
// look inconsistent with their neighbours. They are kept bit-for-bit as
// the device tooling reads them until checked against the register map.
type Status struct {
	frame Frame
}

// DecodeStatus builds a Status view from exactly FrameLen bytes.
func DecodeStatus(b []byte) (Status, error) {
	f, err := NewFrame(b)
	if err != nil {
		return Status{}, err
	}
	return Status{frame: f}, nil
}

// StatusFromFrame wraps an already validated frame.
func StatusFromFrame(f Frame) Status {
	return Status{frame: f}
}

// Frame returns the underlying payload.
func (s Status) Frame() Frame { return s.frame }

func (s Status) String() string {
	return "RadarState(" + s.frame.String() + ")"
}

// ---- byte 0 ----

func (s Status) NVMReadStatus() uint8 {
	return (s.frame[0] >> 6) & 0x01
}

func (s Status) NVMWriteStatus() uint8 {
	return (s.frame[0] >> 7) & 0x01
}

// ---- bytes 1..4 ----

// MaxDistanceCfg is 10 bits: byte2 bits 6-7 on top of byte1.
func (s Status) MaxDistanceCfg() uint16 {
	return uint16(s.frame[2]&0xC0)<<2 | uint16(s.frame[1])
}

func (s Status) SensorID() uint8 {
	return s.frame[4] & 0x07
}

func (s Status) SortIndex() uint8 {
	return (s.frame[4] >> 4) & 0x07
}

func (s Status) RadarPowerCfg() uint8 {
	return ((s.frame[4] >> 5) & 0x04) | (s.frame[3] & 0x03)
}

// ---- byte 5 ----

func (s Status) MotionRxState() uint8 {
	return (s.frame[5] >> 6) & 0x04
}

func (s Status) SendExtInfoCfg() uint8 {
	return (s.frame[5] >> 5) & 0x01
}

func (s Status) SendQualityCfg() uint8 {
	return (s.frame[5] >> 4) & 0x01
}

func (s Status) OutputTypeCfg() uint8 {
	return (s.frame[5] >> 2) & 0x03
}

func (s Status) CtrlRelayCfg() uint8 {
	return (s.frame[5] >> 1) & 0x01
}

// ---- bytes 6..7 ----

func (s Status) CANBaudRate() uint8 {
	return (s.frame[6] >> 5) & 0x07
}

func (s Status) RCSThreshold() uint8 {
	return (s.frame[7] >> 2) & 0x07
}

func (s Status) CalibrationEnabled() uint8 {
	return (s.frame[7] >> 6) & 0x04
}
