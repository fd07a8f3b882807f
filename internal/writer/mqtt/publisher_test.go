// internal/writer/mqtt/publisher_test.go
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/nanoradar-conftool/internal/radar"
	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic, qos, retained, payload})
	return nil
}

func twoSensorResult() *scanner.Result {
	return &scanner.Result{
		ScanID:  "abc",
		Timeout: 10 * time.Second,
		Devices: map[uint8]*scanner.Observation{
			3: {Status: radar.StatusFromFrame(radar.Frame{0, 0, 0, 0, 3, 0, 0, 0}), Count: 10},
			1: {Status: radar.StatusFromFrame(radar.Frame{0, 0, 0, 0, 1, 0, 0, 0}), Count: 25},
		},
	}
}

func TestWriter_PublishesSensorsThenSummary(t *testing.T) {
	pub := &fakePublisher{}
	w := newWriter(pub, Topics{Prefix: "plant/radar", QoS: 1, Retained: true})

	if err := w.Write(context.Background(), twoSensorResult()); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if len(pub.msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(pub.msgs))
	}

	if pub.msgs[0].topic != "plant/radar/sensor/1/state" || pub.msgs[1].topic != "plant/radar/sensor/3/state" {
		t.Fatalf("unexpected topics %q %q", pub.msgs[0].topic, pub.msgs[1].topic)
	}
	if !pub.msgs[0].retained || pub.msgs[0].qos != 1 {
		t.Fatalf("sensor state must use configured qos/retain")
	}

	var rep scanner.Report
	if err := json.Unmarshal(pub.msgs[0].payload, &rep); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
	if rep.SensorID != 1 || rep.Count != 25 || rep.Frequency != 3 {
		t.Fatalf("unexpected report %+v", rep)
	}

	sum := pub.msgs[2]
	if sum.topic != "plant/radar/scan" || sum.retained {
		t.Fatalf("unexpected summary message %+v", sum)
	}
	var s Summary
	if err := json.Unmarshal(sum.payload, &s); err != nil {
		t.Fatalf("summary not json: %v", err)
	}
	if s.ScanID != "abc" || len(s.SensorIDs) != 2 || s.TimeoutMs != 10000 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestWriter_EmptyScanStillPublishesSummary(t *testing.T) {
	pub := &fakePublisher{}
	w := newWriter(pub, Topics{Prefix: "p"})

	if err := w.Write(context.Background(), &scanner.Result{ScanID: "x"}); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].topic != "p/scan" {
		t.Fatalf("unexpected messages %+v", pub.msgs)
	}
}

func TestWriter_PublishError(t *testing.T) {
	boom := errors.New("boom")
	w := newWriter(&fakePublisher{err: boom}, Topics{Prefix: "p"})

	if err := w.Write(context.Background(), twoSensorResult()); !errors.Is(err, boom) {
		t.Fatalf("err=%v want wrapped boom", err)
	}
}
