// internal/bus/socketcan_other.go
//go:build !linux

package bus

import (
	"errors"
	"time"
)

// SocketCAN is only available on Linux.
type SocketCAN struct{}

func OpenSocketCAN(ifname string) (*SocketCAN, error) {
	return nil, transportErr("open", errors.New("socketcan: only supported on linux"))
}

func (s *SocketCAN) Send(m Message) error { return transportErr("send", ErrClosed) }

func (s *SocketCAN) Receive(wait time.Duration) (*Message, error) {
	return nil, transportErr("receive", ErrClosed)
}

func (s *SocketCAN) Close() error { return nil }
