// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match the historic command line tool.
const (
	DefaultInterface     = "socketcan"
	DefaultChannel       = "can0"
	DefaultBitrate       = 500000
	DefaultMessageID     = 0x200
	DefaultScanTimeout   = 10 * time.Second
	DefaultReceiveWait   = 1 * time.Second
	DefaultStatusIDMask  = 0x0F0F
	DefaultStatusPattern = 0x0201
)

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Interface: DefaultInterface,
			Channel:   DefaultChannel,
			Bitrate:   DefaultBitrate,
			Serial: SerialConfig{
				BaudRate:  115200,
				TimeoutMs: 100,
			},
		},
		Configure: ConfigureConfig{
			MessageID: DefaultMessageID,
		},
		Scan: ScanConfig{
			TimeoutMs:     int(DefaultScanTimeout / time.Millisecond),
			ReceiveWaitMs: int(DefaultReceiveWait / time.Millisecond),
			IDMask:        DefaultStatusIDMask,
			IDPattern:     DefaultStatusPattern,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Outputs: OutputsConfig{
			MQTT: MQTTConfig{
				ClientID:    "nanoradar-conftool",
				TopicPrefix: "nanoradar",
				QoS:         1,
				Retained:    true,
				TimeoutMs:   5000,
			},
			InfluxDB: InfluxDBConfig{
				Measurement: "nanoradar_scan",
			},
			Modbus: ModbusConfig{
				UnitID:    1,
				TimeoutMs: 2000,
			},
			Inventory: InventoryConfig{
				Path: "./data/nanoradar.db",
			},
		},
	}
}

// Load reads a YAML file over the defaults and applies environment overrides.
// An empty path returns defaults plus environment overrides.
// Load does not validate; call Validate then Normalize.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides follows the pattern NANORADAR_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NANORADAR_BUS_INTERFACE"); v != "" {
		cfg.Bus.Interface = v
	}
	if v := os.Getenv("NANORADAR_BUS_CHANNEL"); v != "" {
		cfg.Bus.Channel = v
	}
	if v := os.Getenv("NANORADAR_SERIAL_DEVICE"); v != "" {
		cfg.Bus.Serial.Device = v
	}
	if v := os.Getenv("NANORADAR_MQTT_PASSWORD"); v != "" {
		cfg.Outputs.MQTT.Password = v
	}
	if v := os.Getenv("NANORADAR_INFLUXDB_TOKEN"); v != "" {
		cfg.Outputs.InfluxDB.Token = v
	}
}

// ---- duration helpers ----

func (s ScanConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

func (s ScanConfig) ReceiveWait() time.Duration {
	return time.Duration(s.ReceiveWaitMs) * time.Millisecond
}

func (s SerialConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

func (m MQTTConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

func (m ModbusConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}
