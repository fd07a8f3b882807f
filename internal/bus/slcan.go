// internal/bus/slcan.go
package bus

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goburrow/serial"
)

// SLCAN speaks the Lawicel serial line protocol used by most USB-CAN dongles.
//
//	Sn\r        set bitrate (S0=10k .. S8=1M)
//	O\r / C\r   open / close the channel
//	tiiildd..\r standard frame, TiiiiiiiildD..\r extended frame
//	\r / \a     ack / error from the adapter
type SLCAN struct {
	port    io.ReadWriteCloser
	timeout time.Duration
	rx      []byte
	closed  bool
}

type SLCANConfig struct {
	Device   string
	BaudRate int           // serial line speed
	Bitrate  int           // CAN bitrate
	Timeout  time.Duration // per-read serial timeout
}

var slcanBitrates = map[int]byte{
	10000:   '0',
	20000:   '1',
	50000:   '2',
	100000:  '3',
	125000:  '4',
	250000:  '5',
	500000:  '6',
	800000:  '7',
	1000000: '8',
}

const (
	slcanAck  = '\r'
	slcanBell = '\a'
)

var errSLCANNack = errors.New("slcan: adapter rejected command")

// OpenSLCAN opens the serial device, sets the CAN bitrate and opens the channel.
func OpenSLCAN(c SLCANConfig) (*SLCAN, error) {
	if c.Device == "" {
		return nil, transportErr("open", errors.New("slcan: device required"))
	}
	code, ok := slcanBitrates[c.Bitrate]
	if !ok {
		return nil, transportErr("open", fmt.Errorf("slcan: unsupported bitrate %d", c.Bitrate))
	}
	if c.Timeout <= 0 {
		c.Timeout = 100 * time.Millisecond
	}

	port, err := serial.Open(&serial.Config{
		Address:  c.Device,
		BaudRate: c.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  c.Timeout,
	})
	if err != nil {
		return nil, transportErr("open", err)
	}

	s := newSLCAN(port, c.Timeout)

	// Close first: the adapter may still be open from an earlier session.
	_ = s.command("C")
	if err := s.command("S" + string(code)); err != nil {
		_ = port.Close()
		return nil, transportErr("open", err)
	}
	if err := s.command("O"); err != nil {
		_ = port.Close()
		return nil, transportErr("open", err)
	}

	return s, nil
}

func newSLCAN(port io.ReadWriteCloser, timeout time.Duration) *SLCAN {
	return &SLCAN{port: port, timeout: timeout}
}

// Send writes one frame. The adapter's z/Z acknowledgement is not awaited.
func (s *SLCAN) Send(m Message) error {
	if s.closed {
		return transportErr("send", ErrClosed)
	}

	line, err := encodeSLCAN(m)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(s.port, line); err != nil {
		return transportErr("send", err)
	}
	return nil
}

// Receive waits up to wait for the next data frame.
// Acks, transmit confirmations and remote frames are skipped.
func (s *SLCAN) Receive(wait time.Duration) (*Message, error) {
	if s.closed {
		return nil, transportErr("receive", ErrClosed)
	}

	deadline := time.Now().Add(wait)
	for {
		for {
			line, term, ok := s.nextLine()
			if !ok {
				break
			}
			if term == slcanBell {
				continue
			}
			m, err := decodeSLCAN(line)
			if err != nil {
				return nil, transportErr("receive", err)
			}
			if m != nil {
				return m, nil
			}
		}

		if !time.Now().Before(deadline) {
			return nil, nil
		}
		if err := s.fill(); err != nil {
			return nil, transportErr("receive", err)
		}
	}
}

func (s *SLCAN) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_, _ = io.WriteString(s.port, "C\r")
	return transportErr("close", s.port.Close())
}

// command sends a control command and waits for ack or bell.
func (s *SLCAN) command(cmd string) error {
	if _, err := io.WriteString(s.port, cmd+"\r"); err != nil {
		return err
	}

	deadline := time.Now().Add(s.timeout * 5)
	for {
		for {
			line, term, ok := s.nextLine()
			if !ok {
				break
			}
			if term == slcanBell {
				return fmt.Errorf("%w: %q", errSLCANNack, cmd)
			}
			if len(line) == 0 {
				return nil
			}
			// anything else is bus traffic racing the command; drop it
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("slcan: no response to %q", cmd)
		}
		if err := s.fill(); err != nil {
			return err
		}
	}
}

// fill performs one bounded serial read into the rx buffer.
func (s *SLCAN) fill() error {
	var tmp [64]byte
	n, err := s.port.Read(tmp[:])
	if n > 0 {
		s.rx = append(s.rx, tmp[:n]...)
	}
	if err != nil && !errors.Is(err, serial.ErrTimeout) {
		return err
	}
	return nil
}

// nextLine pops one \r or \a terminated line from the rx buffer.
func (s *SLCAN) nextLine() ([]byte, byte, bool) {
	i := bytes.IndexAny(s.rx, "\r\a")
	if i < 0 {
		return nil, 0, false
	}
	line := append([]byte(nil), s.rx[:i]...)
	term := s.rx[i]
	s.rx = s.rx[i+1:]
	return line, term, true
}

// ---- line codec ----

func encodeSLCAN(m Message) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	if m.Extended {
		fmt.Fprintf(&sb, "T%08X", m.ID)
	} else {
		fmt.Fprintf(&sb, "t%03X", m.ID)
	}
	sb.WriteByte(byte('0' + len(m.Data)))
	sb.WriteString(strings.ToUpper(hex.EncodeToString(m.Data)))
	sb.WriteByte(slcanAck)
	return sb.String(), nil
}

// decodeSLCAN parses one line without its terminator.
// Lines that are not data frames return (nil, nil).
func decodeSLCAN(line []byte) (*Message, error) {
	if len(line) == 0 {
		return nil, nil
	}

	var idLen int
	m := &Message{}
	switch line[0] {
	case 't':
		idLen = 3
	case 'T':
		idLen = 8
		m.Extended = true
	default:
		// r/R remote frames, z/Z transmit acks, version strings, ...
		return nil, nil
	}

	if len(line) < 1+idLen+1 {
		return nil, fmt.Errorf("slcan: short frame %q", line)
	}

	id, err := strconv.ParseUint(string(line[1:1+idLen]), 16, 32)
	if err != nil {
		return nil, fmt.Errorf("slcan: bad id in %q: %w", line, err)
	}
	m.ID = uint32(id)

	dlc := int(line[1+idLen] - '0')
	if dlc < 0 || dlc > MaxDLC {
		return nil, fmt.Errorf("slcan: bad dlc in %q", line)
	}

	start := 2 + idLen
	end := start + 2*dlc
	// an optional 4 digit timestamp may follow the data
	if len(line) != end && len(line) != end+4 {
		return nil, fmt.Errorf("slcan: length mismatch in %q", line)
	}

	m.Data = make([]byte, dlc)
	if _, err := hex.Decode(m.Data, line[start:end]); err != nil {
		return nil, fmt.Errorf("slcan: bad data in %q: %w", line, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
