package protocol

import (
	"bytes"
	"testing"
)

func TestNewCommandRequest(t *testing.T) {
	tests := []struct {
		name        string
		cmd         Command
		wantPayload []byte
	}{
		{
			name:        "toggle lid",
			cmd:         CmdToggleLidPosition,
			wantPayload: []byte{0x0A, 0x00},
		},
		{
			name:        "trigger flush",
			cmd:         CmdTriggerFlushManually,
			wantPayload: []byte{0x25, 0x00},
		},
		{
			name:        "toggle anal shower",
			cmd:         CmdToggleAnalShower,
			wantPayload: []byte{0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := NewCommandRequest(tt.cmd)
			if frame.Kind != KindSingle {
				t.Errorf("kind = %s, want single", frame.Kind)
			}
			if !frame.HasTag {
				t.Error("command requests carry the tag bit")
			}
			if !bytes.Equal(frame.Payload, tt.wantPayload) {
				t.Errorf("payload = %x, want %x", frame.Payload, tt.wantPayload)
			}
		})
	}
}

func TestNewDataPointRead(t *testing.T) {
	frame := NewDataPointRead(DpAnalShowerStatus) // id 564 = 0x0234
	want := []byte{0x34, 0x02, 0x00}
	if !bytes.Equal(frame.Payload, want) {
		t.Errorf("payload = %x, want %x", frame.Payload, want)
	}
}

func TestNewDataPointWrite(t *testing.T) {
	t.Run("brightness write vector", func(t *testing.T) {
		// id 340 = 0x0154 little-endian, write flag, one value byte
		frame, err := NewDataPointWrite(DpLightingSetBrightness, []byte{75})
		if err != nil {
			t.Fatalf("NewDataPointWrite() error = %v", err)
		}
		want := []byte{0x54, 0x01, 0x01, 0x4B}
		if !bytes.Equal(frame.Payload, want) {
			t.Errorf("payload = %x, want %x", frame.Payload, want)
		}
	})

	t.Run("multi-byte value", func(t *testing.T) {
		frame, err := NewDataPointWrite(DpRtcTime, []byte{0x01, 0x02, 0x03, 0x04})
		if err != nil {
			t.Fatalf("NewDataPointWrite() error = %v", err)
		}
		want := []byte{0x0F, 0x00, 0x01, 0x01, 0x02, 0x03, 0x04}
		if !bytes.Equal(frame.Payload, want) {
			t.Errorf("payload = %x, want %x", frame.Payload, want)
		}
	})

	t.Run("empty value rejected", func(t *testing.T) {
		if _, err := NewDataPointWrite(DpRtcTime, nil); err == nil {
			t.Error("empty value should fail")
		}
	})

	t.Run("oversized value rejected", func(t *testing.T) {
		if _, err := NewDataPointWrite(DpRtcTime, make([]byte, 300)); err == nil {
			t.Error("oversized value should fail")
		}
	})
}

func TestNewDeviceInfoRequest(t *testing.T) {
	frame := NewDeviceInfoRequest()

	// Six ids: series(0), variant(1), number(2), board serial(5),
	// firmware version(8), link id(11), each little-endian.
	want := []byte{
		0x00, 0x00,
		0x01, 0x00,
		0x02, 0x00,
		0x05, 0x00,
		0x08, 0x00,
		0x0B, 0x00,
	}
	if !bytes.Equal(frame.Payload, want) {
		t.Errorf("payload = %x, want %x", frame.Payload, want)
	}
}

func TestNewSystemStatusRequest(t *testing.T) {
	frame := NewSystemStatusRequest()

	// Six status ids: 564, 872, 875, 142, 585, 475, each little-endian.
	want := []byte{
		0x34, 0x02,
		0x68, 0x03,
		0x6B, 0x03,
		0x8E, 0x00,
		0x49, 0x02,
		0xDB, 0x01,
	}
	if !bytes.Equal(frame.Payload, want) {
		t.Errorf("payload = %x, want %x", frame.Payload, want)
	}
}

// TestEncodeDecodeFrame checks the full outbound/inbound pipeline: build,
// stuff, unstuff, parse.
func TestEncodeDecodeFrame(t *testing.T) {
	original := NewSystemStatusRequest()
	packet := EncodeFrame(original)

	// The stuffed packet carries no zero byte before the delimiter.
	for i, b := range packet[:len(packet)-1] {
		if b == 0 {
			t.Fatalf("stuffed packet has zero byte at offset %d", i)
		}
	}

	frame, err := DecodeFrame(packet)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if frame.Kind != original.Kind || frame.Transaction != original.Transaction {
		t.Errorf("decoded frame = %s, want %s", frame, original)
	}
	if !bytes.Equal(frame.Payload, original.Payload) {
		t.Errorf("decoded payload = %x, want %x", frame.Payload, original.Payload)
	}
}

func TestDecodeFrame_BadPacket(t *testing.T) {
	if _, err := DecodeFrame(nil); err == nil {
		t.Error("empty packet should fail")
	}
	if _, err := DecodeFrame([]byte{0x02, 0x11}); err == nil {
		t.Error("packet without delimiter should fail")
	}
}
