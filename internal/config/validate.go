// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/tamzrod/nanoradar-conftool/internal/radar"
)

// bitrates accepted by the slcan "Sn" command and typical socketcan setups.
var validBitrates = map[int]bool{
	10000:   true,
	20000:   true,
	50000:   true,
	100000:  true,
	125000:  true,
	250000:  true,
	500000:  true,
	800000:  true,
	1000000: true,
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	var errs []string

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Bus.Interface) {
	case "socketcan":
		if cfg.Bus.Channel == "" {
			errs = append(errs, "bus.channel is required for socketcan")
		}
	case "slcan":
		if cfg.Bus.Serial.Device == "" {
			errs = append(errs, "bus.serial.device is required for slcan")
		}
		if cfg.Bus.Serial.BaudRate <= 0 {
			errs = append(errs, "bus.serial.baud_rate must be > 0")
		}
	default:
		errs = append(errs, fmt.Sprintf("bus.interface %q is not supported (socketcan, slcan)", cfg.Bus.Interface))
	}

	if !validBitrates[cfg.Bus.Bitrate] {
		errs = append(errs, fmt.Sprintf("bus.bitrate %d is not a standard CAN bitrate", cfg.Bus.Bitrate))
	}

	// ------------------------------------------------------------
	// CONFIGURE
	// ------------------------------------------------------------

	if cfg.Configure.MessageID > 0x7FF {
		errs = append(errs, fmt.Sprintf("configure.message_id 0x%X exceeds 11-bit identifier range", cfg.Configure.MessageID))
	}

	if cfg.Configure.Strict {
		for _, s := range cfg.Configure.Settings {
			if !radar.HasField(s.Field) {
				errs = append(errs, fmt.Sprintf("configure.settings: unknown field %q", s.Field))
			}
		}
	}

	// ------------------------------------------------------------
	// SCAN
	// ------------------------------------------------------------

	if cfg.Scan.TimeoutMs <= 0 {
		errs = append(errs, "scan.timeout_ms must be > 0")
	}
	if cfg.Scan.ReceiveWaitMs <= 0 {
		errs = append(errs, "scan.receive_wait_ms must be > 0")
	}
	if cfg.Scan.IDMask == 0 {
		errs = append(errs, "scan.id_mask must be non-zero")
	}
	if cfg.Scan.IDPattern&^cfg.Scan.IDMask != 0 {
		errs = append(errs, fmt.Sprintf("scan.id_pattern 0x%X has bits outside id_mask 0x%X", cfg.Scan.IDPattern, cfg.Scan.IDMask))
	}

	// ------------------------------------------------------------
	// OUTPUTS (opt-in)
	// ------------------------------------------------------------

	if m := cfg.Outputs.MQTT; m.Enabled {
		if m.Broker == "" {
			errs = append(errs, "outputs.mqtt.broker is required when enabled")
		}
		if m.QoS < 0 || m.QoS > 2 {
			errs = append(errs, "outputs.mqtt.qos must be 0, 1, or 2")
		}
	}

	if i := cfg.Outputs.InfluxDB; i.Enabled {
		if i.URL == "" || i.Org == "" || i.Bucket == "" {
			errs = append(errs, "outputs.influxdb.url, org and bucket are required when enabled")
		}
	}

	if m := cfg.Outputs.Modbus; m.Enabled {
		if m.Endpoint == "" {
			errs = append(errs, "outputs.modbus.endpoint is required when enabled")
		}
	}

	if inv := cfg.Outputs.Inventory; inv.Enabled && inv.Path == "" {
		errs = append(errs, "outputs.inventory.path is required when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
