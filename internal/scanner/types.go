// internal/scanner/types.go
package scanner

import (
	"math"
	"sort"
	"time"

	"github.com/tamzrod/nanoradar-conftool/internal/radar"
)

// Observation aggregates every status frame seen for one sensor id during a scan.
type Observation struct {
	Status    radar.Status // last decoded frame, arrival order wins
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
}

// Result is the per-scan aggregation. It lives for one Scan call only.
type Result struct {
	ScanID   string
	Started  time.Time
	Finished time.Time
	Timeout  time.Duration
	Devices  map[uint8]*Observation
}

func newResult(id string, start time.Time, timeout time.Duration) *Result {
	return &Result{
		ScanID:  id,
		Started: start,
		Timeout: timeout,
		Devices: make(map[uint8]*Observation),
	}
}

func (r *Result) observe(st radar.Status, at time.Time) {
	id := st.SensorID()
	obs, ok := r.Devices[id]
	if !ok {
		obs = &Observation{FirstSeen: at}
		r.Devices[id] = obs
	}
	obs.Status = st
	obs.Count++
	obs.LastSeen = at
}

// Empty reports "no devices found". It is not an error.
func (r *Result) Empty() bool {
	return r == nil || len(r.Devices) == 0
}

// Report is what gets printed and delivered to outputs for one sensor.
type Report struct {
	ScanID    string               `json:"scan_id"`
	SensorID  uint8                `json:"sensor_id"`
	Count     int                  `json:"count"`
	Frequency int                  `json:"frequency"` // observations per second, rounded
	Frame     string               `json:"frame"`
	State     radar.StatusSnapshot `json:"state"`
	FirstSeen time.Time            `json:"first_seen"`
	LastSeen  time.Time            `json:"last_seen"`
}

// Reports returns one Report per observed sensor, sorted by sensor id.
func (r *Result) Reports() []Report {
	if r.Empty() {
		return nil
	}

	ids := make([]int, 0, len(r.Devices))
	for id := range r.Devices {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	out := make([]Report, 0, len(ids))
	for _, id := range ids {
		obs := r.Devices[uint8(id)]
		out = append(out, Report{
			ScanID:    r.ScanID,
			SensorID:  uint8(id),
			Count:     obs.Count,
			Frequency: Frequency(obs.Count, r.Timeout),
			Frame:     obs.Status.Frame().String(),
			State:     obs.Status.Snapshot(),
			FirstSeen: obs.FirstSeen,
			LastSeen:  obs.LastSeen,
		})
	}
	return out
}

// Frequency estimates broadcasts per second as count / timeout,
// rounded half away from zero.
func Frequency(count int, timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / timeout.Seconds()))
}
