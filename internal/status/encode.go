// internal/status/encode.go
package status

import (
	"math"

	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

// Encode converts a Snapshot into a full radar status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotObservations] = s.Observations
	regs[SlotFrequency] = s.Frequency
	copy(regs[SlotFieldsStart:SlotFieldsEnd+1], s.Fields[:])
	regs[SlotScanSequence] = s.ScanSequence

	return regs
}

// FromReport builds the snapshot of a sensor seen in the last scan.
// Counters saturate at 65535 instead of wrapping.
func FromReport(r scanner.Report, seq uint16) Snapshot {
	s := Snapshot{
		Health:       HealthOK,
		Observations: clampU16(r.Count),
		Frequency:    clampU16(r.Frequency),
		ScanSequence: seq,
	}
	copy(s.Fields[:], r.State.Values())
	return s
}

// Missing builds the snapshot of a sensor absent from the last scan.
// Decoded fields are kept from the previous snapshot so readers still see the last known state.
func Missing(prev Snapshot, seq uint16) Snapshot {
	prev.Health = HealthMissing
	prev.Observations = 0
	prev.Frequency = 0
	prev.ScanSequence = seq
	return prev
}

func clampU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
