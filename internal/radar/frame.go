// internal/radar/frame.go
package radar

import (
	"encoding/hex"
	"fmt"
)

// FrameLen is the fixed payload size of every nano radar message.
const FrameLen = 8

// Frame is an immutable 8-byte message payload.
// Byte indices are 0-based, bit 0 is least-significant.
type Frame [FrameLen]byte

// NewFrame copies b into a Frame.
// Any length other than FrameLen fails with ErrInvalidFrameLength.
func NewFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) != FrameLen {
		return f, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidFrameLength, len(b), FrameLen)
	}
	copy(f[:], b)
	return f, nil
}

// Bytes returns a copy of the payload.
func (f Frame) Bytes() []byte {
	out := make([]byte, FrameLen)
	copy(out, f[:])
	return out
}

func (f Frame) String() string {
	return hex.EncodeToString(f[:])
}

// ParseFrame decodes a 16 hex digit string (e.g. "8000000005000000").
func ParseFrame(s string) (Frame, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Frame{}, fmt.Errorf("radar: parse frame %q: %w", s, err)
	}
	return NewFrame(b)
}
