// internal/scanner/scanner_test.go
package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/nanoradar-conftool/internal/bus"
	cfg "github.com/tamzrod/nanoradar-conftool/internal/config"
	"github.com/tamzrod/nanoradar-conftool/internal/radar"
)

// ---- fakes ----

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// fakeBus plays back a script; each Receive consumes the full wait on the fake clock.
// A nil script entry means "nothing arrived".
type fakeBus struct {
	clock  *fakeClock
	script []*bus.Message
	failAt int // 1-based receive call that fails; 0 = never
	calls  int
}

func (b *fakeBus) Receive(wait time.Duration) (*bus.Message, error) {
	b.calls++
	b.clock.now = b.clock.now.Add(wait)

	if b.failAt != 0 && b.calls == b.failAt {
		return nil, &bus.TransportError{Op: "receive", Err: errors.New("adapter gone")}
	}
	if len(b.script) == 0 {
		return nil, nil
	}
	m := b.script[0]
	b.script = b.script[1:]
	return m, nil
}

func statusMsg(id uint32, sensorID byte, extra byte) *bus.Message {
	return &bus.Message{ID: id, Data: []byte{extra, 0, 0, 0, sensorID, 0, 0, 0}}
}

func newTestScanner(t *testing.T, b *fakeBus, timeout time.Duration) *Scanner {
	t.Helper()
	s, err := New(Config{
		Timeout:     timeout,
		ReceiveWait: time.Second,
		Mask:        0x0F0F,
		Pattern:     0x0201,
	}, b, b.clock)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return s
}

// ---- tests ----

func TestScan_FiveFramesOneSensor(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	b := &fakeBus{clock: clock}
	for i := 0; i < 5; i++ {
		b.script = append(b.script, statusMsg(0x201, 2, 0))
	}

	res, err := newTestScanner(t, b, 10*time.Second).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan err=%v", err)
	}

	if len(res.Devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(res.Devices))
	}
	obs := res.Devices[2]
	if obs == nil || obs.Count != 5 {
		t.Fatalf("sensor 2 observation = %+v", obs)
	}
	if b.calls != 10 {
		t.Fatalf("expected 10 bounded receives, got %d", b.calls)
	}

	reports := res.Reports()
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	// 5 / 10s = 0.5, rounds to 0 or 1 depending on the rule
	if f := reports[0].Frequency; f < 0 || f > 1 {
		t.Fatalf("frequency = %d, want 0 or 1", f)
	}
	if reports[0].SensorID != 2 || reports[0].State.SensorID != 2 {
		t.Fatalf("unexpected report %+v", reports[0])
	}
	if res.ScanID == "" {
		t.Fatalf("scan id not set")
	}
}

func TestScan_NoDevices(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := &fakeBus{clock: clock}

	res, err := newTestScanner(t, b, 10*time.Second).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan err=%v", err)
	}
	if !res.Empty() {
		t.Fatalf("expected empty result, got %d devices", len(res.Devices))
	}
	if res.Reports() != nil {
		t.Fatalf("expected no reports")
	}
	if got := res.Finished.Sub(res.Started); got != 10*time.Second {
		t.Fatalf("scan duration = %v, want 10s", got)
	}
}

func TestScan_IgnoresNonMatchingFrames(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := &fakeBus{
		clock: clock,
		script: []*bus.Message{
			statusMsg(0x200, 1, 0), // config request
			statusMsg(0x202, 1, 0),
			statusMsg(0x301, 1, 0),
			{ID: 0x300, Data: []byte{1, 2, 3}}, // wrong length, never decoded
			statusMsg(0x211, 4, 0),             // matches through the mask
			statusMsg(0x221, 4, 0),
		},
	}

	res, err := newTestScanner(t, b, 10*time.Second).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan err=%v", err)
	}
	if len(res.Devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(res.Devices))
	}
	if res.Devices[4].Count != 2 {
		t.Fatalf("sensor 4 count = %d, want 2", res.Devices[4].Count)
	}
}

func TestScan_LastWriteWins(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := &fakeBus{
		clock: clock,
		script: []*bus.Message{
			statusMsg(0x201, 3, 0x00),
			statusMsg(0x201, 3, 0x80),
			statusMsg(0x201, 5, 0x40),
		},
	}

	res, err := newTestScanner(t, b, 5*time.Second).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan err=%v", err)
	}

	obs := res.Devices[3]
	if obs.Count != 2 {
		t.Fatalf("sensor 3 count = %d, want 2", obs.Count)
	}
	if obs.Status.NVMWriteStatus() != 1 {
		t.Fatalf("sensor 3 snapshot is not the newest frame: %s", obs.Status)
	}
	if !obs.LastSeen.After(obs.FirstSeen) {
		t.Fatalf("LastSeen %v not after FirstSeen %v", obs.LastSeen, obs.FirstSeen)
	}
	if res.Devices[5].Status.NVMReadStatus() != 1 {
		t.Fatalf("sensor 5 snapshot mismatch: %s", res.Devices[5].Status)
	}

	reports := res.Reports()
	if len(reports) != 2 || reports[0].SensorID != 3 || reports[1].SensorID != 5 {
		t.Fatalf("reports not sorted by sensor id: %+v", reports)
	}
	if reports[0].Frame != "8000000003000000" {
		t.Fatalf("report frame = %q", reports[0].Frame)
	}
}

func TestScan_TransportErrorPropagates(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := &fakeBus{
		clock:  clock,
		script: []*bus.Message{statusMsg(0x201, 1, 0)},
		failAt: 3,
	}

	res, err := newTestScanner(t, b, 10*time.Second).Scan(context.Background())
	if res != nil {
		t.Fatalf("expected no result on transport error, got %+v", res)
	}
	var te *bus.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if b.calls != 3 {
		t.Fatalf("scan continued after transport error: %d calls", b.calls)
	}
}

func TestScan_MalformedMatchingFrameFailsLoudly(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := &fakeBus{
		clock:  clock,
		script: []*bus.Message{{ID: 0x201, Data: []byte{1, 2, 3, 4, 5, 6, 7}}},
	}

	_, err := newTestScanner(t, b, 10*time.Second).Scan(context.Background())
	if !errors.Is(err, radar.ErrInvalidFrameLength) {
		t.Fatalf("expected ErrInvalidFrameLength, got %v", err)
	}
}

func TestScan_ContextCanceled(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := &fakeBus{clock: clock}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(t, b, 10*time.Second).Scan(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if b.calls != 0 {
		t.Fatalf("expected no receive after cancel, got %d", b.calls)
	}
}

func TestNew_Validation(t *testing.T) {
	b := &fakeBus{clock: &fakeClock{}}
	tests := []struct {
		name string
		cfg  Config
		rx   Receiver
	}{
		{"zero timeout", Config{ReceiveWait: time.Second, Mask: 0xF0F}, b},
		{"zero wait", Config{Timeout: time.Second, Mask: 0xF0F}, b},
		{"zero mask", Config{Timeout: time.Second, ReceiveWait: time.Second}, b},
		{"nil receiver", Config{Timeout: time.Second, ReceiveWait: time.Second, Mask: 0xF0F}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, tt.rx, nil); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestBuild_FromConfig(t *testing.T) {
	c := cfg.Default()
	s, err := Build(c.Scan, &fakeBus{clock: &fakeClock{}})
	if err != nil {
		t.Fatalf("Build err=%v", err)
	}
	if !s.Matches(0x201) || !s.Matches(0x2F1) || s.Matches(0x200) {
		t.Fatalf("default status pattern not applied")
	}
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		count   int
		timeout time.Duration
		want    int
	}{
		{0, 10 * time.Second, 0},
		{5, 10 * time.Second, 1},
		{4, 10 * time.Second, 0},
		{100, 10 * time.Second, 10},
		{149, 10 * time.Second, 15},
		{3, 0, 0},
	}
	for _, tt := range tests {
		if got := Frequency(tt.count, tt.timeout); got != tt.want {
			t.Fatalf("Frequency(%d, %v) = %d, want %d", tt.count, tt.timeout, got, tt.want)
		}
	}
}
