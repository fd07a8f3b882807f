// internal/writer/status_writer.go
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
	"github.com/tamzrod/nanoradar-conftool/internal/status"
)

// endpointClient is the exact contract the status writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusWriter keeps one status block per sensor id in holding registers.
// Sensors never seen stay HealthUnknown; sensors that drop out become HealthMissing.
type StatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	seq      uint16
	seen     [status.MaxSensors]bool
	needFull [status.MaxSensors]bool
	last     [status.MaxSensors]status.Snapshot
}

// NewStatusWriter builds a status writer for the given plan.
func NewStatusWriter(plan StatusPlan, cli endpointClient) *StatusWriter {
	sw := &StatusWriter{plan: &plan, cli: cli}
	for i := range sw.needFull {
		sw.needFull[i] = true // full re-assert on first successful write
	}
	return sw
}

// Write delivers one scan into status memory.
// On any write failure, the next successful call will re-assert the affected full block.
func (sw *StatusWriter) Write(ctx context.Context, res *scanner.Result) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	sw.seq++

	next := make(map[uint8]status.Snapshot, status.MaxSensors)
	for _, r := range res.Reports() {
		if int(r.SensorID) >= status.MaxSensors {
			continue
		}
		next[r.SensorID] = status.FromReport(r, sw.seq)
	}

	var errs []string

	for id := 0; id < status.MaxSensors; id++ {
		snap, ok := next[uint8(id)]
		switch {
		case ok:
			sw.seen[id] = true
		case sw.seen[id]:
			snap = status.Missing(sw.last[id], sw.seq)
		default:
			snap = status.Snapshot{Health: status.HealthUnknown, ScanSequence: sw.seq}
		}

		if err := sw.writeBlock(id, snap); err != nil {
			errs = append(errs, fmt.Sprintf("sensor %d: %v", id, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (sw *StatusWriter) writeBlock(id int, s status.Snapshot) error {
	base := sw.baseAddr(id)
	regs := status.Encode(s)

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull[id] {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, regs); err != nil {
			return fmt.Errorf("full block write failed: %w", err)
		}
		sw.needFull[id] = false
		sw.last[id] = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write per contiguous run of changed slots
	// ------------------------------------------------------------
	prev := status.Encode(sw.last[id])
	for start := 0; start < len(regs); {
		if regs[start] == prev[start] {
			start++
			continue
		}
		end := start
		for end+1 < len(regs) && regs[end+1] != prev[end+1] {
			end++
		}

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base+uint16(start), regs[start:end+1]); err != nil {
			// Any partial failure introduces doubt, so re-assert on next success.
			sw.needFull[id] = true
			return fmt.Errorf("slots %d-%d write failed: %w", start, end, err)
		}
		start = end + 1
	}

	sw.last[id] = s
	return nil
}

func (sw *StatusWriter) baseAddr(id int) uint16 {
	// Each sensor owns a fixed SlotsPerDevice block after the plan's base slot.
	return (sw.plan.BaseSlot + uint16(id)) * status.SlotsPerDevice
}
