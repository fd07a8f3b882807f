// internal/config/config.go
package config

import "github.com/tamzrod/nanoradar-conftool/internal/radar"

type Config struct {
	Bus       BusConfig       `yaml:"bus"`
	Configure ConfigureConfig `yaml:"configure"`
	Scan      ScanConfig      `yaml:"scan"`
	Logging   LoggingConfig   `yaml:"logging"`
	Outputs   OutputsConfig   `yaml:"outputs"`
}

// ---- BUS ----

type BusConfig struct {
	Interface string       `yaml:"interface"` // socketcan | slcan
	Channel   string       `yaml:"channel"`   // can0, vcan0, ...
	Bitrate   int          `yaml:"bitrate"`
	Serial    SerialConfig `yaml:"serial"`
}

// SerialConfig is only used by the slcan interface.
type SerialConfig struct {
	Device    string `yaml:"device"`
	BaudRate  int    `yaml:"baud_rate"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- CONFIGURE ----

type ConfigureConfig struct {
	MessageID uint32          `yaml:"message_id"`
	Strict    bool            `yaml:"strict"` // reject unknown field names
	Settings  []radar.Setting `yaml:"settings"`
}

// ---- SCAN ----

type ScanConfig struct {
	TimeoutMs     int    `yaml:"timeout_ms"`
	ReceiveWaitMs int    `yaml:"receive_wait_ms"`
	IDMask        uint32 `yaml:"id_mask"`
	IDPattern     uint32 `yaml:"id_pattern"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr
}

// ---- OUTPUTS ----

type OutputsConfig struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Modbus    ModbusConfig    `yaml:"modbus"`
	Inventory InventoryConfig `yaml:"inventory"`
}

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // tcp://host:1883
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Retained    bool   `yaml:"retained"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

type InfluxDBConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// ModbusConfig selects the status memory that receives one block per sensor.
type ModbusConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type InventoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}
