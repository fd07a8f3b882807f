// internal/radar/config.go
package radar

import (
	"fmt"
	"sort"
)

// Config is the mutable 8-byte configuration request.
// It starts zeroed; setters write only their own bits.
//
// Boolean fields are OR-ed into their byte and are never cleared by
// setting 0. This matches what the device tooling has always put on
// the wire; start from NewConfig to get a clean request.
type Config struct {
	buf Frame
}

// Setting is one (field, value) assignment sourced from the CLI or a config file.
type Setting struct {
	Field string `yaml:"field"`
	Value int    `yaml:"value"`
}

// NewConfig returns an all-zero configuration request.
func NewConfig() *Config {
	return &Config{}
}

// Frame returns the encoded payload ready for transmission.
func (c *Config) Frame() Frame { return c.buf }

func (c *Config) String() string {
	return "RadarConfig(" + c.buf.String() + ")"
}

// ---- store_in_nvm_valid: byte 0, bit 7 ----

func (c *Config) StoreInNVMValid() uint8 {
	return (c.buf[0] >> 7) & 0x01
}

func (c *Config) SetStoreInNVMValid(v int) error {
	return c.orBit("store_in_nvm_valid", 0, 7, v)
}

// ---- store_nvm: byte 5, bit 7 ----

func (c *Config) StoreNVM() uint8 {
	return (c.buf[5] >> 7) & 0x01
}

func (c *Config) SetStoreNVM(v int) error {
	return c.orBit("store_nvm", 5, 7, v)
}

// ---- sensor_id_valid: byte 0, bit 1 ----

func (c *Config) SensorIDValid() uint8 {
	return (c.buf[0] >> 1) & 0x01
}

func (c *Config) SetSensorIDValid(v int) error {
	return c.orBit("sensor_id_valid", 0, 1, v)
}

// ---- sensor_id: byte 4, bits 0-2 ----

func (c *Config) SensorID() uint8 {
	return c.buf[4] & 0x07
}

// SetSensorID replaces the low 3 bits of byte 4 and preserves the rest.
func (c *Config) SetSensorID(v int) error {
	if v < 0 || v > 7 {
		return fmt.Errorf("%w: sensor_id must be in range [0, 7], got %d", ErrInvalidFieldValue, v)
	}
	c.buf[4] = (c.buf[4] & 0xF8) | (byte(v) & 0x07)
	return nil
}

func (c *Config) orBit(name string, idx int, bit uint, v int) error {
	if v != 0 && v != 1 {
		return fmt.Errorf("%w: %s must be 0 or 1, got %d", ErrInvalidFieldValue, name, v)
	}
	c.buf[idx] |= byte(v) << bit
	return nil
}

// ---- by-name dispatch ----

var configSetters = map[string]func(*Config, int) error{
	"store_in_nvm_valid": (*Config).SetStoreInNVMValid,
	"store_nvm":          (*Config).SetStoreNVM,
	"sensor_id_valid":    (*Config).SetSensorIDValid,
	"sensor_id":          (*Config).SetSensorID,
}

// HasField reports whether name is a settable config field.
func HasField(name string) bool {
	_, ok := configSetters[name]
	return ok
}

// FieldNames returns the settable field names, sorted.
func FieldNames() []string {
	out := make([]string, 0, len(configSetters))
	for k := range configSetters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set applies value to the named field.
// Unknown names are skipped without error; use HasField for strict checks.
func (c *Config) Set(name string, value int) error {
	fn, ok := configSetters[name]
	if !ok {
		return nil
	}
	return fn(c, value)
}

// Apply runs Set for each setting in order and stops at the first failure.
// Settings applied before the failure stay applied.
func (c *Config) Apply(settings []Setting) error {
	for _, s := range settings {
		if err := c.Set(s.Field, s.Value); err != nil {
			return err
		}
	}
	return nil
}
