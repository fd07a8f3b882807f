// internal/inventory/inventory_test.go
package inventory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tamzrod/nanoradar-conftool/internal/radar"
	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "inventory.db"))
	if err != nil {
		t.Fatalf("Open err=%v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func scanOf(id string, at time.Time, counts map[uint8]int) *scanner.Result {
	res := &scanner.Result{
		ScanID:   id,
		Started:  at,
		Finished: at.Add(10 * time.Second),
		Timeout:  10 * time.Second,
		Devices:  make(map[uint8]*scanner.Observation),
	}
	for sid, n := range counts {
		res.Devices[sid] = &scanner.Observation{
			Status:    radar.StatusFromFrame(radar.Frame{0, 0, 0, 0, sid, 0, 0, 0}),
			Count:     n,
			FirstSeen: at.Add(time.Second),
			LastSeen:  at.Add(9 * time.Second),
		}
	}
	return res
}

func TestStore_UpsertKeepsFirstSeen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Write(ctx, scanOf("a", t0, map[uint8]int{3: 10, 1: 20})); err != nil {
		t.Fatalf("Write a err=%v", err)
	}
	t1 := t0.Add(time.Hour)
	if err := s.Write(ctx, scanOf("b", t1, map[uint8]int{3: 40})); err != nil {
		t.Fatalf("Write b err=%v", err)
	}

	devs, err := s.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices err=%v", err)
	}
	if len(devs) != 2 || devs[0].SensorID != 1 || devs[1].SensorID != 3 {
		t.Fatalf("unexpected devices %+v", devs)
	}

	d := devs[1]
	if !d.FirstSeen.Equal(t0.Add(time.Second)) {
		t.Fatalf("first_seen overwritten: %v", d.FirstSeen)
	}
	if !d.LastSeen.Equal(t1.Add(9 * time.Second)) {
		t.Fatalf("last_seen=%v", d.LastSeen)
	}
	if d.LastScanID != "b" || d.LastCount != 40 || d.LastFrequency != 4 {
		t.Fatalf("unexpected last values %+v", d)
	}
	if d.LastFrame != "0000000003000000" || d.LastState == "" {
		t.Fatalf("unexpected frame/state %q %q", d.LastFrame, d.LastState)
	}

	if devs[0].LastScanID != "a" {
		t.Fatalf("sensor absent from scan b must keep its last scan")
	}

	n, err := s.ScanCount(ctx)
	if err != nil || n != 2 {
		t.Fatalf("ScanCount=%d err=%v", n, err)
	}
}

func TestStore_EmptyScanIsRecorded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, scanOf("empty", time.Now(), nil)); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	n, _ := s.ScanCount(ctx)
	devs, _ := s.Devices(ctx)
	if n != 1 || len(devs) != 0 {
		t.Fatalf("scans=%d devices=%d", n, len(devs))
	}
}
