// internal/scanner/scanner.go
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/nanoradar-conftool/internal/bus"
	"github.com/tamzrod/nanoradar-conftool/internal/radar"
)

// Receiver is the only transport capability discovery needs.
// Receive returns (nil, nil) when nothing arrived within wait.
type Receiver interface {
	Receive(wait time.Duration) (*bus.Message, error)
}

// Clock abstracts wall time so scans can be driven by tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Logger is satisfied by *slog.Logger and logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Config is the immutable scan configuration.
type Config struct {
	Timeout     time.Duration
	ReceiveWait time.Duration

	// A frame is a radar status frame when ID & Mask == Pattern.
	// Several arbitration ids per radar fold into one status class this way.
	Mask    uint32
	Pattern uint32
}

// Scanner is a single-reader, clock-driven discovery loop.
type Scanner struct {
	cfg   Config
	rx    Receiver
	clock Clock
	log   Logger
}

// New creates a scanner. A nil clock means wall time.
func New(cfg Config, rx Receiver, clock Clock) (*Scanner, error) {
	if cfg.Timeout <= 0 {
		return nil, errors.New("scanner: timeout must be > 0")
	}
	if cfg.ReceiveWait <= 0 {
		return nil, errors.New("scanner: receive wait must be > 0")
	}
	if cfg.Mask == 0 {
		return nil, errors.New("scanner: id mask must be non-zero")
	}
	if rx == nil {
		return nil, errors.New("scanner: receiver required")
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Scanner{cfg: cfg, rx: rx, clock: clock, log: nopLogger{}}, nil
}

// SetLogger enables debug logging of discarded frames.
func (s *Scanner) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	s.log = l
}

// Matches reports whether id belongs to the radar status class.
func (s *Scanner) Matches(id uint32) bool {
	return id&s.cfg.Mask == s.cfg.Pattern
}

// Scan runs until Timeout has elapsed and returns the aggregated result.
//
// The elapsed check happens only between receive attempts, so a scan may
// overrun by up to one ReceiveWait. ctx is honoured at the same points.
// A transport error ends the scan and is returned unchanged; nothing
// gathered so far is returned with it.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := s.clock.Now()
	res := newResult(uuid.NewString(), start, s.cfg.Timeout)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.clock.Now().Sub(start) >= s.cfg.Timeout {
			break
		}

		msg, err := s.rx.Receive(s.cfg.ReceiveWait)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			continue
		}

		if !s.Matches(msg.ID) {
			s.log.Debug("frame ignored", "id", fmt.Sprintf("0x%X", msg.ID))
			continue
		}

		// The transport promises 8-byte frames; anything else is a contract break.
		st, err := radar.DecodeStatus(msg.Data)
		if err != nil {
			return nil, fmt.Errorf("scanner: frame 0x%X: %w", msg.ID, err)
		}

		res.observe(st, s.clock.Now())
		s.log.Debug("status frame", "id", fmt.Sprintf("0x%X", msg.ID), "sensor_id", st.SensorID())
	}

	res.Finished = s.clock.Now()
	return res, nil
}
