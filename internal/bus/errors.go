// internal/bus/errors.go
package bus

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedInterface = errors.New("bus: unsupported interface")
	ErrClosed               = errors.New("bus: closed")
)

// TransportError wraps any failure reported by the underlying transport.
// Callers match it with errors.As and must not retry automatically.
type TransportError struct {
	Op  string // open, send, receive, close
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bus %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func transportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}
