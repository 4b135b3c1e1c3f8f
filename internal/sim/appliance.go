package sim

import (
	"encoding/binary"
	"sync"

	"github.com/muurk/aquaclean/internal/logging"
	"github.com/muurk/aquaclean/internal/protocol"
	"go.uber.org/zap"
)

// Request transaction numbers, mirroring the constructors in the protocol
// package.
const (
	txnCommand    = 0
	txnRead       = 1
	txnWrite      = 2
	txnDeviceInfo = 3
	txnStatus     = 4
)

// Identity is the identification block the simulated appliance reports.
type Identity struct {
	SAPNumber    uint16
	SerialNumber uint16
	Firmware     [4]byte
	Description  string
}

// Appliance is an in-memory model of an AquaClean shower toilet. It decodes
// request packets and produces the response packets a real appliance would
// send through the bridge.
type Appliance struct {
	mu sync.Mutex

	identity Identity

	// Toggle state driven by commands.
	analShowerRunning bool
	ladyShowerRunning bool
	dryerRunning      bool
	lidOpen           bool
	orientationLight  bool

	// Maintenance flags, settable for test scenarios.
	userSitting       bool
	descalingNeeded   bool
	maintenanceNeeded bool

	// points holds the readable data points this model carries. Reads of
	// absent points get no response, like real firmware.
	points map[protocol.DataPoint][]byte
}

// NewAppliance creates a simulated appliance with factory defaults.
func NewAppliance(identity Identity) *Appliance {
	return &Appliance{
		identity: identity,
		points: map[protocol.DataPoint][]byte{
			protocol.DpShowerWaterTemperatureStatus: {37},
			protocol.DpAnalSprayIntensityStatus:     {3},
			protocol.DpAnalSprayArmPositionStatus:   {3},
			protocol.DpActiveUserProfile:            {1},
			protocol.DpAnalShowerStatus:             {0},
			protocol.DpLadyShowerStatus:             {0},
			protocol.DpDryingStatus:                 {0},
			protocol.DpOrientationLightLed:          {0},
			protocol.DpDescalingStatus:              {0},
		},
	}
}

// SetFlag adjusts one of the maintenance or presence flags, for scenarios
// the toggles cannot reach.
func (a *Appliance) SetFlag(name string, value bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch name {
	case "user_sitting":
		a.userSitting = value
	case "descaling_needed":
		a.descalingNeeded = value
	case "maintenance_needed":
		a.maintenanceNeeded = value
	}
}

// RemovePoint drops a data point from the model, simulating firmware that
// does not implement it.
func (a *Appliance) RemovePoint(dp protocol.DataPoint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.points, dp)
}

// Handle decodes one request packet and returns the packets to send back.
// Unanswerable requests return nothing; the client's timeout is part of
// the protocol contract.
func (a *Appliance) Handle(packet []byte) [][]byte {
	frame, err := protocol.DecodeFrame(packet)
	if err != nil {
		logging.Debug("Simulator dropping undecodable packet", zap.Error(err))
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	switch frame.Transaction {
	case txnCommand:
		return a.handleCommand(frame.Payload)
	case txnRead:
		return a.handleRead(frame.Payload)
	case txnWrite:
		return a.handleWrite(frame.Payload)
	case txnDeviceInfo:
		return respond(txnDeviceInfo, a.identBlock())
	case txnStatus:
		return respond(txnStatus, a.statusBlock())
	default:
		logging.Debug("Simulator ignoring unknown transaction",
			zap.Uint8("transaction", frame.Transaction))
		return nil
	}
}

func (a *Appliance) handleCommand(payload []byte) [][]byte {
	if len(payload) < 2 {
		return nil
	}
	cmd := protocol.Command(binary.LittleEndian.Uint16(payload))

	switch cmd {
	case protocol.CmdToggleAnalShower:
		a.analShowerRunning = !a.analShowerRunning
		a.points[protocol.DpAnalShowerStatus] = []byte{boolByte(a.analShowerRunning)}
	case protocol.CmdToggleLadyShower:
		a.ladyShowerRunning = !a.ladyShowerRunning
		a.points[protocol.DpLadyShowerStatus] = []byte{boolByte(a.ladyShowerRunning)}
	case protocol.CmdToggleDryer:
		a.dryerRunning = !a.dryerRunning
		a.points[protocol.DpDryingStatus] = []byte{boolByte(a.dryerRunning)}
	case protocol.CmdToggleLidPosition:
		a.lidOpen = !a.lidOpen
	case protocol.CmdToggleOrientationLight:
		a.orientationLight = !a.orientationLight
		a.points[protocol.DpOrientationLightLed] = []byte{boolByte(a.orientationLight)}
	case protocol.CmdTriggerFlushManually:
		// Momentary action, no state change to model.
	default:
		logging.Debug("Simulator acknowledging unmodelled command",
			zap.String("command", cmd.String()))
	}

	return respond(txnCommand, []byte{0x01})
}

func (a *Appliance) handleRead(payload []byte) [][]byte {
	if len(payload) < 3 {
		return nil
	}
	dp := protocol.DataPoint(binary.LittleEndian.Uint16(payload[0:2]))
	value, ok := a.points[dp]
	if !ok {
		logging.Debug("Simulator has no such data point",
			zap.Uint16("point", uint16(dp)))
		return nil
	}
	return respond(txnRead, value)
}

func (a *Appliance) handleWrite(payload []byte) [][]byte {
	if len(payload) < 4 {
		return nil
	}
	dp := protocol.DataPoint(binary.LittleEndian.Uint16(payload[0:2]))
	value := append([]byte(nil), payload[3:]...)

	// Setpoint writes land on the paired status point, like the firmware.
	switch dp {
	case protocol.DpSetShowerWaterTemperature:
		a.points[protocol.DpShowerWaterTemperatureStatus] = value
	case protocol.DpSetAnalSprayIntensity:
		a.points[protocol.DpAnalSprayIntensityStatus] = value
	case protocol.DpSetAnalSprayArmPosition:
		a.points[protocol.DpAnalSprayArmPositionStatus] = value
	default:
		a.points[dp] = value
	}

	return respond(txnWrite, []byte{0x01})
}

// identBlock packs the identification response: SAP number, serial, and
// firmware as little-endian fields, then the description text.
func (a *Appliance) identBlock() []byte {
	out := make([]byte, 8, 8+len(a.identity.Description))
	binary.LittleEndian.PutUint16(out[0:2], a.identity.SAPNumber)
	binary.LittleEndian.PutUint16(out[2:4], a.identity.SerialNumber)
	copy(out[4:8], a.identity.Firmware[:])
	return append(out, a.identity.Description...)
}

// statusBlock packs the six positional status bytes.
func (a *Appliance) statusBlock() []byte {
	return []byte{
		boolByte(a.analShowerRunning),
		boolByte(a.ladyShowerRunning),
		boolByte(a.dryerRunning),
		boolByte(a.userSitting),
		boolByte(a.descalingNeeded),
		boolByte(a.maintenanceNeeded),
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// respond encodes a response payload as link packets, fragmenting into
// Consecutive frames when it exceeds one fragment.
func respond(transaction byte, payload []byte) [][]byte {
	if len(payload) <= protocol.MaxFragmentPayload {
		return [][]byte{protocol.EncodeFrame(&protocol.Frame{
			Kind:        protocol.KindSingle,
			Transaction: transaction,
			Payload:     payload,
		})}
	}

	var packets [][]byte
	for i, txn := 0, byte(0); i < len(payload); txn = (txn + 1) % (protocol.MaxTransaction + 1) {
		end := i + protocol.MaxFragmentPayload
		if end > len(payload) {
			end = len(payload)
		}
		packets = append(packets, protocol.EncodeFrame(&protocol.Frame{
			Kind:        protocol.KindConsecutive,
			Transaction: txn,
			Flag:        end == len(payload),
			Payload:     payload[i:end],
		}))
		i = end
	}
	return packets
}
