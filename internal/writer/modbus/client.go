// internal/writer/modbus/client.go
package modbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// maxWriteQty is the FC16 per-request register limit.
const maxWriteQty = 123

// StatusMemory is one TCP connection to the Modbus server holding the radar status blocks.
// Requests are serialized because the unit id lives on the shared handler.
type StatusMemory struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Dial connects to the endpoint. The connection is verified once here;
// after a failed write the handler redials on the next request.
func Dial(cfg Config) (*StatusMemory, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("writer modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &StatusMemory{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (m *StatusMemory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler.Close()
}

// WriteRegisters writes holding registers (FC16) starting at addr,
// split into as many requests as the protocol limit needs.
func (m *StatusMemory) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handler.SlaveId = unitID

	for _, c := range chunks(addr, regs, maxWriteQty) {
		if _, err := m.client.WriteMultipleRegisters(c.addr, uint16(len(c.regs)), packRegisters(c.regs)); err != nil {
			// Drop the socket so a half-dead connection is not reused.
			_ = m.handler.Close()
			return fmt.Errorf("write %d registers at %d: %w", len(c.regs), c.addr, err)
		}
	}
	return nil
}

type chunk struct {
	addr uint16
	regs []uint16
}

func chunks(addr uint16, regs []uint16, max int) []chunk {
	var out []chunk
	for len(regs) > 0 {
		n := len(regs)
		if n > max {
			n = max
		}
		out = append(out, chunk{addr: addr, regs: regs[:n]})
		addr += uint16(n)
		regs = regs[n:]
	}
	return out
}

// Modbus register memory order (BIG-ENDIAN)
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		binary.BigEndian.PutUint16(out[2*i:], r)
	}
	return out
}
