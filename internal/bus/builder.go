// internal/bus/builder.go
package bus

import (
	"fmt"
	"strings"

	cfg "github.com/tamzrod/nanoradar-conftool/internal/config"
)

// Open constructs a Bus for the configured interface.
// The caller owns the returned Bus and must Close it on every exit path.
func Open(c cfg.BusConfig) (Bus, error) {
	switch strings.ToLower(c.Interface) {
	case "socketcan":
		s, err := OpenSocketCAN(c.Channel)
		if err != nil {
			return nil, err
		}
		return s, nil

	case "slcan":
		s, err := OpenSLCAN(SLCANConfig{
			Device:   c.Serial.Device,
			BaudRate: c.Serial.BaudRate,
			Bitrate:  c.Bitrate,
			Timeout:  c.Serial.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInterface, c.Interface)
	}
}
