// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

// multiWriter fans one result out to every output.
// A failing output does not stop the others.
type multiWriter struct {
	outputs []Named
}

// Multi combines outputs into one Writer.
func Multi(outputs ...Named) Writer {
	return &multiWriter{outputs: outputs}
}

func (m *multiWriter) Write(ctx context.Context, res *scanner.Result) error {
	if res == nil {
		return errors.New("writer: nil result")
	}

	var errs []string
	for _, o := range m.outputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", o.Name, err))
			continue
		}
		if err := o.Writer.Write(ctx, res); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", o.Name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("writer: " + strings.Join(errs, " | "))
	}
	return nil
}
