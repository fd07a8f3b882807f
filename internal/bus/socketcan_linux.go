// internal/bus/socketcan_linux.go
//go:build linux

package bus

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// SocketCAN is a raw CAN_RAW socket bound to one interface (can0, vcan0, ...).
// Bitrate is owned by the kernel interface configuration (ip link), not by this socket.
type SocketCAN struct {
	fd     int
	ifname string
	closed bool
}

// OpenSocketCAN binds a raw CAN socket to ifname.
func OpenSocketCAN(ifname string) (*SocketCAN, error) {
	if ifname == "" {
		return nil, transportErr("open", errors.New("socketcan: interface name required"))
	}

	ifi, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, transportErr("open", fmt.Errorf("socketcan: %w", err))
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, transportErr("open", fmt.Errorf("socketcan: socket: %w", err))
	}

	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		_ = unix.Close(fd)
		return nil, transportErr("open", fmt.Errorf("socketcan: bind %s: %w", ifname, err))
	}

	return &SocketCAN{fd: fd, ifname: ifname}, nil
}

func (s *SocketCAN) Send(m Message) error {
	if s.closed {
		return transportErr("send", ErrClosed)
	}

	buf, err := marshalCANFrame(m)
	if err != nil {
		return err
	}

	n, err := unix.Write(s.fd, buf)
	if err != nil {
		return transportErr("send", err)
	}
	if n != len(buf) {
		return transportErr("send", fmt.Errorf("short write: %d of %d bytes", n, len(buf)))
	}
	return nil
}

func (s *SocketCAN) Receive(wait time.Duration) (*Message, error) {
	if s.closed {
		return nil, transportErr("receive", ErrClosed)
	}

	// A zero timeval means "block forever" to the kernel.
	if wait < time.Microsecond {
		wait = time.Microsecond
	}
	tv := unix.NsecToTimeval(wait.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return nil, transportErr("receive", err)
	}

	buf := make([]byte, canFrameSize)
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, transportErr("receive", err)
	}

	m, err := unmarshalCANFrame(buf[:n])
	if err != nil {
		return nil, transportErr("receive", err)
	}
	return m, nil
}

func (s *SocketCAN) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return transportErr("close", unix.Close(s.fd))
}
