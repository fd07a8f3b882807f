// internal/radar/errors.go
package radar

import "errors"

var (
	// ErrInvalidFrameLength is returned when a buffer is not exactly FrameLen bytes.
	ErrInvalidFrameLength = errors.New("radar: invalid frame length")

	// ErrInvalidFieldValue is returned when a config field is set outside its range.
	ErrInvalidFieldValue = errors.New("radar: invalid field value")
)
