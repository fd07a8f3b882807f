// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"

	cfg "github.com/tamzrod/nanoradar-conftool/internal/config"
	"github.com/tamzrod/nanoradar-conftool/internal/inventory"
	"github.com/tamzrod/nanoradar-conftool/internal/writer/influx"
	"github.com/tamzrod/nanoradar-conftool/internal/writer/modbus"
	"github.com/tamzrod/nanoradar-conftool/internal/writer/mqtt"
)

// Build connects every enabled output and returns them as one Writer.
// With no output enabled it returns a nil Writer.
// The returned close function releases every connection that was opened.
func Build(o cfg.OutputsConfig) (Writer, func() error, error) {
	var (
		outputs []Named
		closers []func() error
	)

	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	fail := func(name string, err error) (Writer, func() error, error) {
		_ = closeAll()
		return nil, nil, fmt.Errorf("writer: %s: %w", name, err)
	}

	// ---- modbus status memory ----
	if o.Modbus.Enabled {
		mem, err := modbus.Dial(modbus.Config{
			Endpoint: o.Modbus.Endpoint,
			Timeout:  o.Modbus.Timeout(),
		})
		if err != nil {
			return fail("modbus", err)
		}
		closers = append(closers, mem.Close)

		plan := StatusPlan{
			Endpoint: o.Modbus.Endpoint,
			UnitID:   o.Modbus.UnitID,
			BaseSlot: o.Modbus.BaseSlot,
		}
		outputs = append(outputs, Named{Name: "modbus", Writer: NewStatusWriter(plan, mem)})
	}

	// ---- mqtt ----
	if o.MQTT.Enabled {
		w, closeFn, err := mqtt.Connect(mqtt.Config{
			Broker:   o.MQTT.Broker,
			ClientID: o.MQTT.ClientID,
			Username: o.MQTT.Username,
			Password: o.MQTT.Password,
			Timeout:  o.MQTT.Timeout(),
		}, mqtt.Topics{
			Prefix:   o.MQTT.TopicPrefix,
			QoS:      byte(o.MQTT.QoS),
			Retained: o.MQTT.Retained,
		})
		if err != nil {
			return fail("mqtt", err)
		}
		closers = append(closers, closeFn)
		outputs = append(outputs, Named{Name: "mqtt", Writer: w})
	}

	// ---- influxdb ----
	if o.InfluxDB.Enabled {
		w, closeFn, err := influx.Connect(influx.Config{
			URL:         o.InfluxDB.URL,
			Token:       o.InfluxDB.Token,
			Org:         o.InfluxDB.Org,
			Bucket:      o.InfluxDB.Bucket,
			Measurement: o.InfluxDB.Measurement,
		})
		if err != nil {
			return fail("influxdb", err)
		}
		closers = append(closers, closeFn)
		outputs = append(outputs, Named{Name: "influxdb", Writer: w})
	}

	// ---- inventory ----
	if o.Inventory.Enabled {
		store, err := inventory.Open(o.Inventory.Path)
		if err != nil {
			return fail("inventory", err)
		}
		closers = append(closers, store.Close)
		outputs = append(outputs, Named{Name: "inventory", Writer: store})
	}

	if len(outputs) == 0 {
		return nil, closeAll, nil
	}
	return Multi(outputs...), closeAll, nil
}
