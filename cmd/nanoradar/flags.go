// cmd/nanoradar/flags.go
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/nanoradar-conftool/internal/radar"
)

// settingsFlag collects repeated -set key=value arguments in order.
type settingsFlag []radar.Setting

func (s *settingsFlag) String() string {
	parts := make([]string, 0, len(*s))
	for _, st := range *s {
		parts = append(parts, fmt.Sprintf("%s=%d", st.Field, st.Value))
	}
	return strings.Join(parts, ",")
}

func (s *settingsFlag) Set(v string) error {
	st, err := parseSetting(v)
	if err != nil {
		return err
	}
	*s = append(*s, st)
	return nil
}

// parseSetting accepts key=value with a decimal, 0x hex or 0b binary value.
func parseSetting(v string) (radar.Setting, error) {
	key, val, ok := strings.Cut(v, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return radar.Setting{}, fmt.Errorf("expected key=value, got %q", v)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(val), 0, 32)
	if err != nil {
		return radar.Setting{}, fmt.Errorf("setting %q: invalid value %q", key, val)
	}
	return radar.Setting{Field: key, Value: int(n)}, nil
}

// messageIDFlag parses an arbitration id such as 0x200 or 512.
type messageIDFlag struct {
	id  uint32
	set bool
}

func (m *messageIDFlag) String() string {
	return fmt.Sprintf("0x%X", m.id)
}

func (m *messageIDFlag) Set(v string) error {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 32)
	if err != nil {
		return fmt.Errorf("invalid message id %q", v)
	}
	m.id = uint32(n)
	m.set = true
	return nil
}
