// internal/status/constants.go
package status

// Radar Status Block layout constants.
// These values define the register map seen by PLC/SCADA readers
// and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per sensor id.
const SlotsPerDevice = 20

// MaxSensors is the number of addressable sensor ids (0..7).
const MaxSensors = 8

// ---- SLOT INDICES ----

// SlotHealthCode holds the sensor health state.
const SlotHealthCode = 0

// SlotObservations holds the number of status frames seen in the last scan.
const SlotObservations = 1

// SlotFrequency holds the estimated broadcast frequency (frames per second).
const SlotFrequency = 2

// ---- DECODED FIELDS ----

// SlotFieldsStart is the first slot of the decoded status fields,
// stored in radar.StatusFieldNames order.
const SlotFieldsStart = 3

// SlotFieldsCount is the number of decoded status fields.
const SlotFieldsCount = 14

// SlotFieldsEnd is the last decoded field slot (inclusive).
const SlotFieldsEnd = SlotFieldsStart + SlotFieldsCount - 1

// ---- RESERVED RANGE ----

// Slots 17–18 are reserved for future use.
const SlotReservedStart = 17
const SlotReservedEnd = 18

// SlotScanSequence holds a counter bumped once per delivered scan (wraps at 65535).
const SlotScanSequence = 19

// ---- HEALTH CODES ----

// HealthUnknown represents a sensor never reported since start.
const HealthUnknown uint16 = 0

// HealthOK represents a sensor seen in the last scan.
const HealthOK uint16 = 1

// HealthMissing represents a sensor seen earlier but absent from the last scan.
const HealthMissing uint16 = 2
