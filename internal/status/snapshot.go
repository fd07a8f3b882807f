// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver for one sensor.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health       uint16
	Observations uint16
	Frequency    uint16
	Fields       [SlotFieldsCount]uint16
	ScanSequence uint16
}
