package protocol

import (
	"fmt"
)

// FrameKind identifies the link-level role of a frame. The value occupies
// the top three bits of the header byte.
type FrameKind byte

// Frame kinds observed on the appliance link
const (
	KindSingle      FrameKind = 0 // one-packet message or first packet of a request
	KindConsecutive FrameKind = 2 // continuation fragment of a larger message
	KindFlowControl FrameKind = 3 // link-level acknowledgment, no application data
)

const (
	// MaxTransaction is the largest transaction number the 3-bit header
	// field can carry.
	MaxTransaction = 7

	// MaxFragmentPayload is the largest payload a Consecutive frame can
	// declare in its one-byte length field.
	MaxFragmentPayload = 254
)

// ErrShortFrame is returned when a buffer is too small for the structure
// its header declares.
var ErrShortFrame = fmt.Errorf("frame data shorter than declared")

// Frame is one link-level packet.
//
// Header byte layout, most- to least-significant bit:
//
//	[7:5] frame kind
//	[4]   tag present
//	[3:1] transaction number (0-7)
//	[0]   flag (frame-kind specific; marks the final fragment on
//	      Consecutive frames)
type Frame struct {
	Kind        FrameKind
	HasTag      bool
	Transaction byte
	Flag        bool
	Payload     []byte
}

// ToBytes serializes the frame for transmission. Consecutive frames carry
// an explicit length byte between the header and the payload.
func (f *Frame) ToBytes() []byte {
	header := byte(f.Kind)<<5 | (f.Transaction&0x07)<<1
	if f.HasTag {
		header |= 1 << 4
	}
	if f.Flag {
		header |= 1
	}

	if f.Kind == KindConsecutive {
		out := make([]byte, 0, 2+len(f.Payload))
		out = append(out, header, byte(len(f.Payload)))
		return append(out, f.Payload...)
	}

	out := make([]byte, 0, 1+len(f.Payload))
	out = append(out, header)
	return append(out, f.Payload...)
}

// ParseFrame parses a frame from unstuffed packet bytes.
//
// A Consecutive frame whose length byte declares more payload than the
// buffer holds fails with ErrShortFrame instead of reading out of bounds.
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("empty frame data")
	}

	header := data[0]
	f := &Frame{
		Kind:        FrameKind(header >> 5),
		HasTag:      header&0x10 != 0,
		Transaction: (header >> 1) & 0x07,
		Flag:        header&0x01 != 0,
	}

	if f.Kind == KindConsecutive {
		if len(data) < 2 {
			return nil, fmt.Errorf("consecutive frame missing length byte")
		}
		count := int(data[1])
		if len(data) < 2+count {
			return nil, fmt.Errorf("%w: declared %d payload bytes, have %d",
				ErrShortFrame, count, len(data)-2)
		}
		f.Payload = data[2 : 2+count]
		return f, nil
	}

	f.Payload = data[1:]
	return f, nil
}

// String returns a human-readable frame kind name
func (k FrameKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindConsecutive:
		return "consecutive"
	case KindFlowControl:
		return "flow-control"
	default:
		return fmt.Sprintf("unknown(0x%X)", byte(k))
	}
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{kind=%s, tag=%v, txn=%d, flag=%v, payload=%d bytes}",
		f.Kind, f.HasTag, f.Transaction, f.Flag, len(f.Payload))
}
