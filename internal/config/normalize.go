// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Bus.Interface = strings.ToLower(cfg.Bus.Interface)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)

	// The bounded wait can never be longer than the scan itself.
	if cfg.Scan.ReceiveWaitMs > cfg.Scan.TimeoutMs {
		cfg.Scan.ReceiveWaitMs = cfg.Scan.TimeoutMs
	}

	// Topic prefix must not carry a trailing separator.
	cfg.Outputs.MQTT.TopicPrefix = strings.TrimRight(cfg.Outputs.MQTT.TopicPrefix, "/")
}
