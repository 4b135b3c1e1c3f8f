package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/muurk/aquaclean/internal/logging"
	"go.uber.org/zap"
)

// Response parsers for the appliance link. Firmware variants answer the
// same request with different amounts of data, so a short or garbled
// buffer fills only the fields it can and defaults the rest instead of
// failing the caller.

// DeviceIdentification holds the best-effort identity of the appliance.
// All fields are optional; missing response bytes leave them empty.
type DeviceIdentification struct {
	SAPNumber            string
	SerialNumber         string
	ProductionDate       string
	Description          string
	FirmwareVersion      string
	InitialOperationDate string
}

// SystemParameters is a snapshot of the appliance's known state. The
// protocol layer replaces it wholesale on every successful status read and
// never merges partially.
type SystemParameters struct {
	// Basic status
	UserIsSitting     bool
	AnalShowerRunning bool
	LadyShowerRunning bool
	DryerRunning      bool
	LidOpen           bool
	OrientationLight  int

	// Temperature and comfort
	WaterTemperature int
	SeatHeating      bool
	NightLight       bool

	// Spray controls
	SprayIntensity   int
	SprayPosition    int
	OscillatingSpray bool

	// Maintenance
	DescalingNeeded          bool
	FilterReplacementNeeded  bool
	MaintenanceNeeded        bool

	// Advanced features
	AutoFlush         bool
	BarrierFreeMode   bool
	ActiveUserProfile int
}

// DefaultSystemParameters returns a snapshot with the appliance's factory
// defaults, used as the base before a status read fills it in.
func DefaultSystemParameters() SystemParameters {
	return SystemParameters{
		WaterTemperature:  37,
		SprayIntensity:    3,
		SprayPosition:     3,
		AutoFlush:         true,
		ActiveUserProfile: 1,
	}
}

// ParseDeviceIdentification decodes a device-info response.
//
// Layout, all little-endian: 2 bytes SAP number, 2 bytes serial, 4 bytes
// firmware version (one byte per version part), remainder a best-effort
// UTF-8 description. Shorter buffers populate only the leading fields.
func ParseDeviceIdentification(data []byte) DeviceIdentification {
	var id DeviceIdentification

	if len(data) >= 4 {
		id.SAPNumber = fmt.Sprintf("SAP-%d", binary.LittleEndian.Uint16(data[0:2]))
		id.SerialNumber = fmt.Sprintf("SN-%08d", binary.LittleEndian.Uint16(data[2:4]))
	}
	if len(data) >= 8 {
		id.FirmwareVersion = fmt.Sprintf("FW-%d.%d.%d.%d", data[4], data[5], data[6], data[7])
	}
	if len(data) > 8 {
		id.Description = decodeText(data[8:])
	}

	if len(data) < 8 {
		logging.Debug("Short device identification response",
			zap.Int("length", len(data)),
		)
	}
	return id
}

// ParseSystemParameters decodes a system-status response into a fresh
// snapshot. The first six bytes are positional boolean flags per the
// versioned status map; anything past them is out of contract.
func ParseSystemParameters(data []byte) SystemParameters {
	return ParseSystemParametersVersion(data, StatusMapV1)
}

// ParseSystemParametersVersion decodes a status response using a specific
// status-map revision.
func ParseSystemParametersVersion(data []byte, version StatusMapVersion) SystemParameters {
	params := DefaultSystemParameters()
	applyStatusBytes(&params, data, version)
	return params
}

// ParseDataPointValue decodes raw data-point value bytes according to the
// catalogue encoding. Unknown or short values fall back to the raw bytes.
func ParseDataPointValue(dp DataPoint, value []byte) (interface{}, error) {
	info, _ := dp.Lookup()

	switch info.Encoding {
	case EncodingBoolean:
		if len(value) < 1 {
			return nil, fmt.Errorf("data point %d: boolean value empty", dp)
		}
		return value[0] != 0, nil

	case EncodingEnumerated, EncodingPercent:
		if len(value) < 1 {
			return nil, fmt.Errorf("data point %d: value empty", dp)
		}
		return int(value[0]), nil

	case EncodingCounter:
		return uint32(leUint(value)), nil

	case EncodingSigned:
		return int32(leUint(value)), nil

	case EncodingTimestampUTC:
		return time.Unix(int64(leUint(value)), 0).UTC(), nil

	case EncodingText:
		return decodeText(value), nil

	default: // EncodingBinary
		return value, nil
	}
}

// leUint reads up to four little-endian bytes as an unsigned integer,
// tolerating short buffers.
func leUint(value []byte) uint64 {
	var v uint64
	n := len(value)
	if n > 4 {
		n = 4
	}
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(value[i])
	}
	return v
}

// decodeText extracts printable UTF-8 from response bytes, discarding NULs
// and non-decodable sequences.
func decodeText(data []byte) string {
	var b strings.Builder
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r != utf8.RuneError && r != 0 {
			b.WriteRune(r)
		}
		data = data[size:]
	}
	return strings.TrimSpace(b.String())
}
