package client

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muurk/aquaclean/internal/protocol"
)

// fakeTransport is an in-memory appliance link. An optional responder
// inspects each written packet and returns zero or more notification
// packets to deliver back, mimicking the bridge's notify path.
type fakeTransport struct {
	mu        sync.Mutex
	writes    [][]byte
	notify    func(data []byte)
	closed    bool
	responder func(packet []byte) [][]byte
}

func (t *fakeTransport) Write(ctx context.Context, data []byte) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return errors.New("transport closed")
	}
	t.writes = append(t.writes, append([]byte(nil), data...))
	responder := t.responder
	notify := t.notify
	t.mu.Unlock()

	if responder == nil || notify == nil {
		return nil
	}
	for _, resp := range responder(data) {
		notify(resp)
	}
	return nil
}

func (t *fakeTransport) Subscribe(fn func(data []byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notify = fn
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) writeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.writes)
}

// singleResponse stuffs a payload into one Single frame packet.
func singleResponse(t *testing.T, transaction byte, payload []byte) []byte {
	t.Helper()
	f := &protocol.Frame{
		Kind:        protocol.KindSingle,
		Transaction: transaction,
		Payload:     payload,
	}
	return protocol.EncodeFrame(f)
}

func TestIdentify(t *testing.T) {
	// SAP 1234, serial 99, firmware 4.2.1.0, description "Mera".
	ident := make([]byte, 8)
	binary.LittleEndian.PutUint16(ident[0:2], 1234)
	binary.LittleEndian.PutUint16(ident[2:4], 99)
	copy(ident[4:8], []byte{4, 2, 1, 0})
	ident = append(ident, []byte("Mera")...)

	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))
	ft.responder = func(packet []byte) [][]byte {
		return [][]byte{singleResponse(t, 3, ident)}
	}

	got, err := c.Identify(context.Background())
	if err != nil {
		t.Fatalf("Identify() error: %v", err)
	}
	if got.SAPNumber != "SAP-1234" {
		t.Errorf("SAPNumber = %q, want %q", got.SAPNumber, "SAP-1234")
	}
	if got.SerialNumber != "SN-00000099" {
		t.Errorf("SerialNumber = %q, want %q", got.SerialNumber, "SN-00000099")
	}
	if got.FirmwareVersion != "FW-4.2.1.0" {
		t.Errorf("FirmwareVersion = %q, want %q", got.FirmwareVersion, "FW-4.2.1.0")
	}
	if got.Description != "Mera" {
		t.Errorf("Description = %q, want %q", got.Description, "Mera")
	}

	if stored, ok := c.State().Identification(); !ok || stored != got {
		t.Errorf("state identification = %+v (ok=%v), want stored copy", stored, ok)
	}
}

func TestReadStatusUpdatesState(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))
	ft.responder = func(packet []byte) [][]byte {
		// Anal shower running, dryer running, descaling needed.
		return [][]byte{singleResponse(t, 4, []byte{1, 0, 1, 0, 1, 0})}
	}

	params, err := c.ReadStatus(context.Background())
	if err != nil {
		t.Fatalf("ReadStatus() error: %v", err)
	}
	if !params.AnalShowerRunning || params.LadyShowerRunning || !params.DryerRunning {
		t.Errorf("shower flags = %v/%v/%v, want true/false/true",
			params.AnalShowerRunning, params.LadyShowerRunning, params.DryerRunning)
	}
	if !params.DescalingNeeded || params.MaintenanceNeeded {
		t.Errorf("maintenance flags = %v/%v, want true/false",
			params.DescalingNeeded, params.MaintenanceNeeded)
	}
	if !c.State().Confirmed() {
		t.Error("state not marked confirmed after status read")
	}
}

func TestSendCommandTimeout(t *testing.T) {
	ft := &fakeTransport{} // never responds
	c := New(ft, WithTimeout(20*time.Millisecond))

	err := c.SendCommand(context.Background(), protocol.CmdToggleLidPosition)
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("SendCommand() error = %v, want ErrNoResponse", err)
	}
	if n := ft.writeCount(); n != 1 {
		t.Errorf("write count = %d, want 1 (timeout must not retry)", n)
	}
}

func TestSendCommandContextCancelled(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.SendCommand(ctx, protocol.CmdToggleDryer)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("SendCommand() error = %v, want context.Canceled", err)
	}
}

func TestResponseSlotLastWriteWins(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))

	first := c.begin()
	second := c.begin()

	c.handleNotification(singleResponse(t, 0, []byte{0xAA}))

	select {
	case msg := <-second:
		if len(msg) != 1 || msg[0] != 0xAA {
			t.Errorf("second slot got % X, want AA", msg)
		}
	default:
		t.Fatal("second (latest) slot did not receive the response")
	}

	select {
	case msg := <-first:
		t.Fatalf("replaced slot received % X, want nothing", msg)
	default:
	}
}

func TestUnsolicitedMessageDropped(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))

	// No request pending; must not panic or poison the next exchange.
	c.handleNotification(singleResponse(t, 0, []byte{1, 2, 3}))

	ft.responder = func(packet []byte) [][]byte {
		return [][]byte{singleResponse(t, 0, []byte{0x01})}
	}
	if err := c.SendCommand(context.Background(), protocol.CmdTriggerFlushManually); err != nil {
		t.Fatalf("SendCommand() after unsolicited message: %v", err)
	}
}

func TestUndecodableNotificationIgnored(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))

	// COBS-invalid packet, then garbage without delimiter.
	c.handleNotification([]byte{0x05, 0x01, 0x00})
	c.handleNotification([]byte{0xFF, 0xFF})

	ft.responder = func(packet []byte) [][]byte {
		return [][]byte{singleResponse(t, 0, []byte{0x01})}
	}
	if err := c.SendCommand(context.Background(), protocol.CmdToggleAnalShower); err != nil {
		t.Fatalf("SendCommand() after bad notifications: %v", err)
	}
}

func TestMultiFragmentResponse(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))

	frag := func(txn byte, final bool, payload []byte) []byte {
		return protocol.EncodeFrame(&protocol.Frame{
			Kind:        protocol.KindConsecutive,
			Transaction: txn,
			Flag:        final,
			Payload:     payload,
		})
	}
	ident := make([]byte, 8)
	binary.LittleEndian.PutUint16(ident[0:2], 500)
	binary.LittleEndian.PutUint16(ident[2:4], 7)
	copy(ident[4:8], []byte{1, 0, 0, 0})

	ft.responder = func(packet []byte) [][]byte {
		return [][]byte{
			frag(0, false, ident[:4]),
			frag(1, true, ident[4:]),
		}
	}

	got, err := c.Identify(context.Background())
	if err != nil {
		t.Fatalf("Identify() error: %v", err)
	}
	if got.SAPNumber != "SAP-500" || got.FirmwareVersion != "FW-1.0.0.0" {
		t.Errorf("reassembled identity = %+v", got)
	}
}

func TestDataPointAccessValidation(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))

	if _, err := c.WriteDataPoint(context.Background(), protocol.DpAnalShowerStatus, []byte{1}); err == nil {
		t.Error("WriteDataPoint() to read-only point succeeded, want error")
	}
	if _, err := c.ReadDataPoint(context.Background(), protocol.DpStartStopAnalShower); err == nil {
		t.Error("ReadDataPoint() of write-only point succeeded, want error")
	}
	if n := ft.writeCount(); n != 0 {
		t.Errorf("write count = %d, want 0 (rejected before the wire)", n)
	}
}

func TestSetpointRangeValidation(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"temperature low", func() error { return c.SetWaterTemperature(ctx, 33) }},
		{"temperature high", func() error { return c.SetWaterTemperature(ctx, 41) }},
		{"intensity low", func() error { return c.SetSprayIntensity(ctx, 0) }},
		{"intensity high", func() error { return c.SetSprayIntensity(ctx, 6) }},
		{"position high", func() error { return c.SetSprayPosition(ctx, 6) }},
		{"profile low", func() error { return c.SetUserProfile(ctx, 0) }},
		{"profile high", func() error { return c.SetUserProfile(ctx, 5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Error("out-of-range setpoint accepted, want error")
			}
		})
	}
	if n := ft.writeCount(); n != 0 {
		t.Errorf("write count = %d, want 0 (rejected before the wire)", n)
	}
}

func TestToggleMarksTentative(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(time.Second))
	ft.responder = func(packet []byte) [][]byte {
		return [][]byte{singleResponse(t, 0, []byte{0x01})}
	}

	if err := c.ToggleLid(context.Background()); err != nil {
		t.Fatalf("ToggleLid() error: %v", err)
	}

	params, pending := c.State().Snapshot()
	if !params.LidOpen {
		t.Error("snapshot LidOpen = false, want optimistic true")
	}
	if len(pending) != 1 || pending[0] != TentativeLid {
		t.Errorf("pending = %v, want [lid]", pending)
	}
}

func TestToggleTimeoutLeavesStateAlone(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(20*time.Millisecond))

	if err := c.ToggleDryer(context.Background()); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("ToggleDryer() error = %v, want ErrNoResponse", err)
	}
	if _, pending := c.State().Snapshot(); len(pending) != 0 {
		t.Errorf("pending = %v, want none after unacknowledged toggle", pending)
	}
}

func TestProbeDataPoint(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, WithTimeout(20*time.Millisecond))

	// Answer reads of the anal shower status point only; the decoded
	// request payload starts with the little-endian point id.
	ft.responder = func(packet []byte) [][]byte {
		f, err := protocol.DecodeFrame(packet)
		if err != nil || len(f.Payload) < 2 {
			return nil
		}
		id := protocol.DataPoint(binary.LittleEndian.Uint16(f.Payload[0:2]))
		if id != protocol.DpAnalShowerStatus {
			return nil
		}
		return [][]byte{singleResponse(t, 1, []byte{0x01})}
	}

	supported, err := c.ProbeDataPoint(context.Background(), protocol.DpAnalShowerStatus)
	if err != nil || !supported {
		t.Errorf("probe of answered point = (%v, %v), want (true, nil)", supported, err)
	}

	supported, err = c.ProbeDataPoint(context.Background(), protocol.DpLadyShowerStatus)
	if err != nil || supported {
		t.Errorf("probe of ignored point = (%v, %v), want (false, nil)", supported, err)
	}
}
