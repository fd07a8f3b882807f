// internal/bus/bus.go
package bus

import (
	"encoding/hex"
	"fmt"
	"time"
)

// Identifier limits for classical CAN.
const (
	MaxStdID = 0x7FF
	MaxExtID = 0x1FFFFFFF
	MaxDLC   = 8
)

// Message is one classical CAN data frame: identifier plus up to 8 bytes.
type Message struct {
	ID       uint32
	Extended bool
	Data     []byte
}

// String renders the message in cansend notation, e.g. 0x200#0000000003800000.
func (m Message) String() string {
	return fmt.Sprintf("0x%X#%s", m.ID, hex.EncodeToString(m.Data))
}

// Validate checks identifier range and payload length.
func (m Message) Validate() error {
	if len(m.Data) > MaxDLC {
		return fmt.Errorf("bus: data length %d exceeds %d", len(m.Data), MaxDLC)
	}
	if m.Extended {
		if m.ID > MaxExtID {
			return fmt.Errorf("bus: extended id 0x%X out of range", m.ID)
		}
	} else if m.ID > MaxStdID {
		return fmt.Errorf("bus: standard id 0x%X out of range", m.ID)
	}
	return nil
}

// Bus is the capability the radar tooling needs from a CAN transport.
// Receive returns (nil, nil) when nothing arrived within wait.
// A Bus has exactly one reader at a time.
type Bus interface {
	Send(m Message) error
	Receive(wait time.Duration) (*Message, error)
	Close() error
}
