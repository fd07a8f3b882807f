// internal/configurator/configurator.go
package configurator

import (
	"errors"
	"fmt"

	"github.com/tamzrod/nanoradar-conftool/internal/bus"
	"github.com/tamzrod/nanoradar-conftool/internal/radar"
)

// DefaultMessageID is the arbitration id nano radars listen on for configuration.
const DefaultMessageID = 0x200

// ErrUnknownField is only returned in strict mode.
var ErrUnknownField = errors.New("configurator: unknown field")

// Sender is the transmit half of a bus.
type Sender interface {
	Send(m bus.Message) error
}

// Build applies settings to a fresh config request.
// Unknown names are skipped unless strict is set.
func Build(settings []radar.Setting, strict bool) (*radar.Config, error) {
	if strict {
		for _, s := range settings {
			if !radar.HasField(s.Field) {
				return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownField, s.Field, radar.FieldNames())
			}
		}
	}

	c := radar.NewConfig()
	if err := c.Apply(settings); err != nil {
		return nil, err
	}
	return c, nil
}

// Send transmits the encoded request as a standard frame on id.
// Nothing is awaited from the radar.
func Send(tx Sender, id uint32, c *radar.Config) (bus.Message, error) {
	if c == nil {
		return bus.Message{}, errors.New("configurator: nil config")
	}

	msg := bus.Message{
		ID:   id,
		Data: c.Frame().Bytes(),
	}
	if err := msg.Validate(); err != nil {
		return msg, err
	}
	if err := tx.Send(msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// Apply builds and sends in one step. Build failures abort before anything is sent.
func Apply(tx Sender, id uint32, settings []radar.Setting, strict bool) (bus.Message, error) {
	c, err := Build(settings, strict)
	if err != nil {
		return bus.Message{}, err
	}
	return Send(tx, id, c)
}
