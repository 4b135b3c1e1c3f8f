package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame_ToBytes(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  []byte
	}{
		{
			name: "single frame with tag, transaction 3",
			frame: Frame{
				Kind:        KindSingle,
				HasTag:      true,
				Transaction: 3,
				Payload:     []byte{0xAA, 0xBB},
			},
			want: []byte{0x16, 0xAA, 0xBB},
		},
		{
			name: "single frame without tag",
			frame: Frame{
				Kind:    KindSingle,
				Payload: []byte{0x01},
			},
			want: []byte{0x00, 0x01},
		},
		{
			name: "consecutive frame carries length byte",
			frame: Frame{
				Kind:        KindConsecutive,
				Transaction: 1,
				Payload:     []byte{0xDE, 0xAD},
			},
			want: []byte{0x42, 0x02, 0xDE, 0xAD},
		},
		{
			name: "consecutive final fragment sets flag bit",
			frame: Frame{
				Kind:        KindConsecutive,
				Transaction: 1,
				Flag:        true,
				Payload:     []byte{0xBE},
			},
			want: []byte{0x43, 0x01, 0xBE},
		},
		{
			name: "flow control frame is header only",
			frame: Frame{
				Kind: KindFlowControl,
			},
			want: []byte{0x60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.frame.ToBytes()
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ToBytes() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestParseFrame_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty buffer", data: nil},
		{name: "consecutive missing length byte", data: []byte{0x40}},
		{name: "consecutive declared length exceeds buffer", data: []byte{0x40, 0x05, 0x01, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFrame(tt.data); err == nil {
				t.Errorf("ParseFrame(%x) succeeded, want error", tt.data)
			}
		})
	}

	t.Run("short consecutive reports ErrShortFrame", func(t *testing.T) {
		_, err := ParseFrame([]byte{0x40, 0x05, 0x01})
		if !errors.Is(err, ErrShortFrame) {
			t.Errorf("error = %v, want ErrShortFrame", err)
		}
	})
}

// TestFrameRoundTrip checks from_bytes(to_bytes(f)) == f across all valid
// field combinations for Single and Consecutive kinds.
func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x01},
		{0xAA, 0xBB, 0xCC},
		bytes.Repeat([]byte{0x7F}, 254),
	}

	for _, kind := range []FrameKind{KindSingle, KindConsecutive} {
		for _, hasTag := range []bool{false, true} {
			for txn := byte(0); txn <= MaxTransaction; txn++ {
				for _, flag := range []bool{false, true} {
					for _, payload := range payloads {
						f := &Frame{
							Kind:        kind,
							HasTag:      hasTag,
							Transaction: txn,
							Flag:        flag,
							Payload:     payload,
						}

						parsed, err := ParseFrame(f.ToBytes())
						if err != nil {
							t.Fatalf("ParseFrame(%s) failed: %v", f, err)
						}

						if parsed.Kind != f.Kind || parsed.HasTag != f.HasTag ||
							parsed.Transaction != f.Transaction || parsed.Flag != f.Flag {
							t.Fatalf("round trip mismatch: got %s, want %s", parsed, f)
						}
						if !bytes.Equal(parsed.Payload, f.Payload) {
							t.Fatalf("payload mismatch for %s: got %x, want %x",
								f, parsed.Payload, f.Payload)
						}
					}
				}
			}
		}
	}
}

func TestParseFrame_SingleTrailingBytes(t *testing.T) {
	// Single frames consume the rest of the packet as payload.
	frame, err := ParseFrame([]byte{0x16, 0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}
	if frame.Kind != KindSingle {
		t.Errorf("kind = %s, want single", frame.Kind)
	}
	if !frame.HasTag {
		t.Error("tag should be set")
	}
	if frame.Transaction != 3 {
		t.Errorf("transaction = %d, want 3", frame.Transaction)
	}
	if !bytes.Equal(frame.Payload, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("payload = %x, want 010203", frame.Payload)
	}
}

func TestParseFrame_ConsecutiveIgnoresTrailing(t *testing.T) {
	// The length byte bounds the payload even when the packet has padding.
	frame, err := ParseFrame([]byte{0x40, 0x02, 0xAA, 0xBB, 0xFF})
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}
	if !bytes.Equal(frame.Payload, []byte{0xAA, 0xBB}) {
		t.Errorf("payload = %x, want aabb", frame.Payload)
	}
}

func TestFrameKind_String(t *testing.T) {
	tests := []struct {
		kind FrameKind
		want string
	}{
		{KindSingle, "single"},
		{KindConsecutive, "consecutive"},
		{KindFlowControl, "flow-control"},
		{FrameKind(5), "unknown(0x5)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("FrameKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
