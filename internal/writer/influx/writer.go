// internal/writer/influx/writer.go
package influx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

// DefaultMeasurement is used when the config leaves it empty.
const DefaultMeasurement = "nanoradar_scan"

const pingTimeout = 5 * time.Second

// ErrConnectionFailed is returned when the server cannot be reached or is unhealthy.
var ErrConnectionFailed = errors.New("influxdb: connection failed")

type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// pointWriter is satisfied by api.WriteAPIBlocking.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Writer stores one point per sensor and scan.
type Writer struct {
	w           pointWriter
	measurement string
}

func newWriter(w pointWriter, measurement string) *Writer {
	if measurement == "" {
		measurement = DefaultMeasurement
	}
	return &Writer{w: w, measurement: measurement}
}

func (w *Writer) Write(ctx context.Context, res *scanner.Result) error {
	reports := res.Reports()
	if len(reports) == 0 {
		return nil
	}

	ts := res.Finished
	if ts.IsZero() {
		ts = time.Now()
	}

	points := make([]*write.Point, 0, len(reports))
	for _, r := range reports {
		points = append(points, Point(w.measurement, r, ts))
	}

	if err := w.w.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influxdb: write %d points: %w", len(points), err)
	}
	return nil
}

// Point converts a report into an InfluxDB point.
// Decoded fields are stored as integers under their snake_case names.
func Point(measurement string, r scanner.Report, ts time.Time) *write.Point {
	tags := map[string]string{
		"sensor_id": strconv.Itoa(int(r.SensorID)),
		"scan_id":   r.ScanID,
	}

	fields := map[string]interface{}{
		"count":     r.Count,
		"frequency": r.Frequency,
		"frame":     r.Frame,
	}
	for name, v := range r.State.Map() {
		fields[name] = int64(v)
	}

	return influxdb2.NewPoint(measurement, tags, fields, ts)
}

// Connect pings the server and returns a Writer backed by the blocking write API.
func Connect(cfg Config) (*Writer, func() error, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	w := newWriter(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Measurement)
	closeFn := func() error {
		client.Close()
		return nil
	}
	return w, closeFn, nil
}
