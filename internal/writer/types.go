// internal/writer/types.go
package writer

import (
	"context"

	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

// Writer delivers a finished scan to one output.
// Writers are called once per finished scan.
type Writer interface {
	Write(ctx context.Context, res *scanner.Result) error
}

// Named is a Writer tagged with the output name used in logs and errors.
type Named struct {
	Name   string
	Writer Writer
}

// StatusPlan locates the radar status blocks in Modbus memory.
type StatusPlan struct {
	Endpoint string
	UnitID   uint8
	BaseSlot uint16 // block index; first register = BaseSlot * SlotsPerDevice
}
