// internal/bus/canframe.go
package bus

import (
	"encoding/binary"
	"fmt"
)

// Linux struct can_frame (classical CAN), host byte order:
//
//	0..3  can_id (EFF/RTR/ERR flags in the top bits)
//	4     can_dlc
//	5..7  padding
//	8..15 data
const canFrameSize = 16

const (
	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canErrFlag = 0x20000000
	canEffMask = 0x1FFFFFFF
	canStdMask = 0x7FF
)

func marshalCANFrame(m Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	id := m.ID
	if m.Extended {
		id |= canEffFlag
	}

	buf := make([]byte, canFrameSize)
	binary.NativeEndian.PutUint32(buf[0:4], id)
	buf[4] = byte(len(m.Data))
	copy(buf[8:], m.Data)
	return buf, nil
}

// unmarshalCANFrame returns nil for remote and error frames; they carry no payload we use.
func unmarshalCANFrame(buf []byte) (*Message, error) {
	if len(buf) < canFrameSize {
		return nil, fmt.Errorf("bus: short can_frame: %d bytes", len(buf))
	}

	raw := binary.NativeEndian.Uint32(buf[0:4])
	if raw&(canRtrFlag|canErrFlag) != 0 {
		return nil, nil
	}

	dlc := int(buf[4])
	if dlc > MaxDLC {
		return nil, fmt.Errorf("bus: invalid dlc %d", dlc)
	}

	m := &Message{Extended: raw&canEffFlag != 0}
	if m.Extended {
		m.ID = raw & canEffMask
	} else {
		m.ID = raw & canStdMask
	}
	m.Data = make([]byte, dlc)
	copy(m.Data, buf[8:8+dlc])
	return m, nil
}
