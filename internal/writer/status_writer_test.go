// internal/writer/status_writer_test.go
package writer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/nanoradar-conftool/internal/radar"
	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
	"github.com/tamzrod/nanoradar-conftool/internal/status"
)

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	calls []writeCall
	fail  bool
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("endpoint down")
	}
	cp := append([]uint16(nil), regs...)
	f.calls = append(f.calls, writeCall{unitID: unitID, addr: addr, regs: cp})
	return nil
}

func resultWith(counts map[uint8]int) *scanner.Result {
	res := &scanner.Result{
		ScanID:  "scan-1",
		Timeout: 10 * time.Second,
		Devices: make(map[uint8]*scanner.Observation),
	}
	for id, n := range counts {
		res.Devices[id] = &scanner.Observation{
			Status: radar.StatusFromFrame(radar.Frame{0, 0, 0, 0, id, 0, 0, 0}),
			Count:  n,
		}
	}
	return res
}

func TestStatusWriter_FirstWriteIsFullBlockPerSensor(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(StatusPlan{UnitID: 3, BaseSlot: 1}, cli)

	if err := sw.Write(context.Background(), resultWith(map[uint8]int{2: 20})); err != nil {
		t.Fatalf("Write err=%v", err)
	}

	if len(cli.calls) != status.MaxSensors {
		t.Fatalf("expected %d full block writes, got %d", status.MaxSensors, len(cli.calls))
	}
	for id, c := range cli.calls {
		if c.unitID != 3 {
			t.Fatalf("unit id=%d", c.unitID)
		}
		want := uint16((1 + id) * status.SlotsPerDevice)
		if c.addr != want || len(c.regs) != status.SlotsPerDevice {
			t.Fatalf("sensor %d: addr=%d len=%d want addr=%d", id, c.addr, len(c.regs), want)
		}
	}

	seen := cli.calls[2].regs
	if seen[status.SlotHealthCode] != status.HealthOK || seen[status.SlotObservations] != 20 || seen[status.SlotFrequency] != 2 {
		t.Fatalf("sensor 2 block wrong: %v", seen)
	}
	if cli.calls[0].regs[status.SlotHealthCode] != status.HealthUnknown {
		t.Fatalf("unseen sensor should be unknown")
	}
	if seen[status.SlotScanSequence] != 1 {
		t.Fatalf("scan sequence=%d", seen[status.SlotScanSequence])
	}
}

func TestStatusWriter_IncrementalAfterFirst(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(StatusPlan{}, cli)

	_ = sw.Write(context.Background(), resultWith(map[uint8]int{4: 10}))
	cli.calls = nil

	if err := sw.Write(context.Background(), resultWith(map[uint8]int{4: 30})); err != nil {
		t.Fatalf("Write err=%v", err)
	}

	var sensor4 []writeCall
	base := uint16(4 * status.SlotsPerDevice)
	for _, c := range cli.calls {
		if c.addr >= base && c.addr < base+status.SlotsPerDevice {
			sensor4 = append(sensor4, c)
		}
	}

	// observations+frequency are contiguous; scan sequence is separate.
	if len(sensor4) != 2 {
		t.Fatalf("expected 2 incremental writes for sensor 4, got %+v", sensor4)
	}
	if sensor4[0].addr != base+status.SlotObservations || len(sensor4[0].regs) != 2 {
		t.Fatalf("unexpected first run %+v", sensor4[0])
	}
	if sensor4[0].regs[0] != 30 || sensor4[0].regs[1] != 3 {
		t.Fatalf("unexpected values %v", sensor4[0].regs)
	}
	if sensor4[1].addr != base+status.SlotScanSequence || sensor4[1].regs[0] != 2 {
		t.Fatalf("unexpected sequence write %+v", sensor4[1])
	}
}

func TestStatusWriter_SensorDropsOutBecomesMissing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(StatusPlan{}, cli)

	_ = sw.Write(context.Background(), resultWith(map[uint8]int{1: 10}))
	_ = sw.Write(context.Background(), resultWith(nil))

	if sw.last[1].Health != status.HealthMissing {
		t.Fatalf("health=%d want missing", sw.last[1].Health)
	}
	if sw.last[1].Fields[3] != 1 {
		t.Fatalf("last known sensor id field lost")
	}
	if sw.last[0].Health != status.HealthUnknown {
		t.Fatalf("never-seen sensor changed health: %d", sw.last[0].Health)
	}
}

func TestStatusWriter_FailureForcesFullRewrite(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(StatusPlan{}, cli)

	_ = sw.Write(context.Background(), resultWith(map[uint8]int{0: 10}))

	cli.fail = true
	if err := sw.Write(context.Background(), resultWith(map[uint8]int{0: 20})); err == nil {
		t.Fatalf("expected error")
	}
	if !sw.needFull[0] {
		t.Fatalf("failed incremental write must force a full block")
	}

	cli.fail = false
	cli.calls = nil
	if err := sw.Write(context.Background(), resultWith(map[uint8]int{0: 20})); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if len(cli.calls[0].regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block re-assert, got %d regs", len(cli.calls[0].regs))
	}
}

func TestStatusWriter_MissingClient(t *testing.T) {
	sw := NewStatusWriter(StatusPlan{Endpoint: "x"}, nil)
	if err := sw.Write(context.Background(), resultWith(nil)); err == nil {
		t.Fatalf("expected error")
	}
}
