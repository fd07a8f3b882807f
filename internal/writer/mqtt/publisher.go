// internal/writer/mqtt/publisher.go
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

var (
	// ErrConnectionFailed is returned when the broker cannot be reached.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishTimeout is returned when the broker does not acknowledge in time.
	ErrPublishTimeout = errors.New("mqtt: publish timeout")
)

// Config is the broker side of a publisher.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// Topics decides where scan reports go.
type Topics struct {
	Prefix   string
	QoS      byte
	Retained bool
}

func (t Topics) Sensor(id uint8) string {
	return fmt.Sprintf("%s/sensor/%d/state", t.Prefix, id)
}

func (t Topics) Scan() string {
	return t.Prefix + "/scan"
}

// publisher is the subset of a broker connection the writer needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Summary is the payload published on the scan topic.
type Summary struct {
	ScanID    string    `json:"scan_id"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	TimeoutMs int64     `json:"timeout_ms"`
	SensorIDs []int     `json:"sensor_ids"`
}

// Writer publishes one retained state message per sensor and a scan summary.
type Writer struct {
	pub    publisher
	topics Topics
}

func newWriter(pub publisher, topics Topics) *Writer {
	return &Writer{pub: pub, topics: topics}
}

func (w *Writer) Write(ctx context.Context, res *scanner.Result) error {
	reports := res.Reports()

	ids := make([]int, 0, len(reports))
	for _, r := range reports {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("mqtt: encode sensor %d: %w", r.SensorID, err)
		}
		if err := w.pub.Publish(w.topics.Sensor(r.SensorID), w.topics.QoS, w.topics.Retained, payload); err != nil {
			return fmt.Errorf("mqtt: sensor %d: %w", r.SensorID, err)
		}
		ids = append(ids, int(r.SensorID))
	}

	payload, err := json.Marshal(Summary{
		ScanID:    res.ScanID,
		Started:   res.Started,
		Finished:  res.Finished,
		TimeoutMs: res.Timeout.Milliseconds(),
		SensorIDs: ids,
	})
	if err != nil {
		return fmt.Errorf("mqtt: encode summary: %w", err)
	}

	// Summary is an event, never retained.
	if err := w.pub.Publish(w.topics.Scan(), w.topics.QoS, false, payload); err != nil {
		return fmt.Errorf("mqtt: summary: %w", err)
	}
	return nil
}

// ---- paho connection ----

type pahoPublisher struct {
	client  pahomqtt.Client
	timeout time.Duration
}

func (p *pahoPublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("%w: %s after %v", ErrPublishTimeout, topic, p.timeout)
	}
	return token.Error()
}

// Connect dials the broker and returns a Writer plus its close function.
func Connect(cfg Config, topics Topics) (*Writer, func() error, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(false).
		SetConnectTimeout(cfg.Timeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, cfg.Timeout)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	topics.Prefix = strings.TrimRight(topics.Prefix, "/")
	w := newWriter(&pahoPublisher{client: client, timeout: cfg.Timeout}, topics)

	closeFn := func() error {
		client.Disconnect(250)
		return nil
	}
	return w, closeFn, nil
}
