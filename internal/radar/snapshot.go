// internal/radar/snapshot.go
package radar

// StatusSnapshot is the decoded field set of one status frame, used for reporting.
// Field order matches the wire layout.
type StatusSnapshot struct {
	NVMReadStatus      uint8  `json:"nvm_read_status"`
	NVMWriteStatus     uint8  `json:"nvm_write_status"`
	MaxDistanceCfg     uint16 `json:"max_distance_cfg"`
	SensorID           uint8  `json:"sensor_id"`
	SortIndex          uint8  `json:"sort_index"`
	RadarPowerCfg      uint8  `json:"radar_power_cfg"`
	MotionRxState      uint8  `json:"motion_rx_state"`
	SendExtInfoCfg     uint8  `json:"send_ext_info_cfg"`
	SendQualityCfg     uint8  `json:"send_quality_cfg"`
	OutputTypeCfg      uint8  `json:"output_type_cfg"`
	CtrlRelayCfg       uint8  `json:"ctrl_relay_cfg"`
	CANBaudRate        uint8  `json:"can_baud_rate"`
	RCSThreshold       uint8  `json:"rcs_threshold"`
	CalibrationEnabled uint8  `json:"calibration_enabled"`
}

// StatusFieldNames lists snapshot keys in wire order.
var StatusFieldNames = []string{
	"nvm_read_status",
	"nvm_write_status",
	"max_distance_cfg",
	"sensor_id",
	"sort_index",
	"radar_power_cfg",
	"motion_rx_state",
	"send_ext_info_cfg",
	"send_quality_cfg",
	"output_type_cfg",
	"ctrl_relay_cfg",
	"can_baud_rate",
	"rcs_threshold",
	"calibration_enabled",
}

// Snapshot projects every accessor into a StatusSnapshot.
// Nothing is cached; each call recomputes from the frame.
func (s Status) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		NVMReadStatus:      s.NVMReadStatus(),
		NVMWriteStatus:     s.NVMWriteStatus(),
		MaxDistanceCfg:     s.MaxDistanceCfg(),
		SensorID:           s.SensorID(),
		SortIndex:          s.SortIndex(),
		RadarPowerCfg:      s.RadarPowerCfg(),
		MotionRxState:      s.MotionRxState(),
		SendExtInfoCfg:     s.SendExtInfoCfg(),
		SendQualityCfg:     s.SendQualityCfg(),
		OutputTypeCfg:      s.OutputTypeCfg(),
		CtrlRelayCfg:       s.CtrlRelayCfg(),
		CANBaudRate:        s.CANBaudRate(),
		RCSThreshold:       s.RCSThreshold(),
		CalibrationEnabled: s.CalibrationEnabled(),
	}
}

// Values returns the snapshot values in StatusFieldNames order.
func (ss StatusSnapshot) Values() []uint16 {
	return []uint16{
		uint16(ss.NVMReadStatus),
		uint16(ss.NVMWriteStatus),
		ss.MaxDistanceCfg,
		uint16(ss.SensorID),
		uint16(ss.SortIndex),
		uint16(ss.RadarPowerCfg),
		uint16(ss.MotionRxState),
		uint16(ss.SendExtInfoCfg),
		uint16(ss.SendQualityCfg),
		uint16(ss.OutputTypeCfg),
		uint16(ss.CtrlRelayCfg),
		uint16(ss.CANBaudRate),
		uint16(ss.RCSThreshold),
		uint16(ss.CalibrationEnabled),
	}
}

// Map returns the snapshot as a name -> value mapping.
func (ss StatusSnapshot) Map() map[string]uint16 {
	vals := ss.Values()
	out := make(map[string]uint16, len(StatusFieldNames))
	for i, name := range StatusFieldNames {
		out[name] = vals[i]
	}
	return out
}
