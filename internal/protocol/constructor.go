package protocol

import (
	"encoding/binary"
	"fmt"
)

// Request constructors for the appliance link. All multi-byte integers are
// little-endian. Every request fits one Single frame; the link MTU is far
// above the largest request payload (13 bytes).

// Read/write flag byte following the data-point id in a request payload.
const (
	dpReadFlag  = 0x00
	dpWriteFlag = 0x01
)

// deviceInfoPoints are the six identification points packed into a
// device-info request, in wire order.
var deviceInfoPoints = [6]DataPoint{
	DpDeviceSeries,
	DpDeviceVariant,
	DpDeviceNumber,
	DpPCBSerialNumber,
	DpFwRsVersion,
	DpBluetoothID,
}

// systemStatusPoints are the six status points packed into a system-status
// request, in wire order. The positional status mapping in statusmap.go
// depends on this order.
var systemStatusPoints = [6]DataPoint{
	DpAnalShowerStatus,
	DpLadyShowerStatus,
	DpDryingStatus,
	DpFlushStatus,
	DpDescalingStatus,
	DpMaintenanceStatus,
}

// NewCommandRequest builds a high-level command request. The payload is
// the 2-byte command id.
func NewCommandRequest(cmd Command) *Frame {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, uint16(cmd))

	return &Frame{
		Kind:        KindSingle,
		HasTag:      true,
		Transaction: 0,
		Payload:     payload,
	}
}

// NewDataPointRead builds a read request for one data point: 2-byte id
// followed by the read flag.
func NewDataPointRead(dp DataPoint) *Frame {
	payload := make([]byte, 3)
	binary.LittleEndian.PutUint16(payload, uint16(dp))
	payload[2] = dpReadFlag

	return &Frame{
		Kind:        KindSingle,
		HasTag:      true,
		Transaction: 1,
		Payload:     payload,
	}
}

// NewDataPointWrite builds a write request for one data point: 2-byte id,
// write flag, then the caller-supplied value bytes (typically 1-4).
func NewDataPointWrite(dp DataPoint, value []byte) (*Frame, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("data point %d: write requires value bytes", dp)
	}
	if len(value) > MaxFragmentPayload-3 {
		return nil, fmt.Errorf("data point %d: value too large: %d bytes", dp, len(value))
	}

	payload := make([]byte, 3, 3+len(value))
	binary.LittleEndian.PutUint16(payload, uint16(dp))
	payload[2] = dpWriteFlag
	payload = append(payload, value...)

	return &Frame{
		Kind:        KindSingle,
		HasTag:      true,
		Transaction: 2,
		Payload:     payload,
	}, nil
}

// NewDeviceInfoRequest builds the identification request: six fixed
// data-point ids packed as little-endian 16-bit values.
func NewDeviceInfoRequest() *Frame {
	return &Frame{
		Kind:        KindSingle,
		HasTag:      true,
		Transaction: 3,
		Payload:     packPoints(deviceInfoPoints),
	}
}

// NewSystemStatusRequest builds the status snapshot request: six fixed
// status data-point ids packed as little-endian 16-bit values.
func NewSystemStatusRequest() *Frame {
	return &Frame{
		Kind:        KindSingle,
		HasTag:      true,
		Transaction: 4,
		Payload:     packPoints(systemStatusPoints),
	}
}

func packPoints(points [6]DataPoint) []byte {
	payload := make([]byte, len(points)*2)
	for i, dp := range points {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(dp))
	}
	return payload
}

// EncodeFrame serializes a frame and byte-stuffs it for transmission.
func EncodeFrame(f *Frame) []byte {
	return EncodeCOBS(f.ToBytes())
}

// DecodeFrame unstuffs one received packet and parses its frame header.
func DecodeFrame(packet []byte) (*Frame, error) {
	raw, err := DecodeCOBS(packet)
	if err != nil {
		return nil, fmt.Errorf("unstuff packet: %w", err)
	}
	frame, err := ParseFrame(raw)
	if err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}
	return frame, nil
}
