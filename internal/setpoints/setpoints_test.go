package setpoints

import (
	"context"
	"encoding/binary"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muurk/aquaclean/internal/client"
	"github.com/muurk/aquaclean/internal/protocol"
)

// statusFor maps each writable setpoint to the status point that reflects
// it. The active user profile reads back through its own id.
var statusFor = map[protocol.DataPoint]protocol.DataPoint{
	protocol.DpSetShowerWaterTemperature: protocol.DpShowerWaterTemperatureStatus,
	protocol.DpSetAnalSprayIntensity:     protocol.DpAnalSprayIntensityStatus,
	protocol.DpSetAnalSprayArmPosition:   protocol.DpAnalSprayArmPositionStatus,
	protocol.DpActiveUserProfile:         protocol.DpActiveUserProfile,
}

// fakeAppliance is an in-memory appliance behind the transport interface.
// Reads of known status points are answered; everything else times out.
type fakeAppliance struct {
	mu     sync.Mutex
	notify func(data []byte)
	closed bool

	// values holds the readable status points the firmware carries.
	values map[protocol.DataPoint]int

	// settleReads delays written values by this many status reads,
	// mimicking the appliance's settling time.
	settleReads int
	pending     map[protocol.DataPoint]int
	countdown   map[protocol.DataPoint]int

	// rejectWrites silently drops writes to these setpoints.
	rejectWrites map[protocol.DataPoint]bool
}

func newFakeAppliance(values map[protocol.DataPoint]int) *fakeAppliance {
	return &fakeAppliance{
		values:       values,
		pending:      make(map[protocol.DataPoint]int),
		countdown:    make(map[protocol.DataPoint]int),
		rejectWrites: make(map[protocol.DataPoint]bool),
	}
}

func (a *fakeAppliance) Subscribe(fn func(data []byte)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notify = fn
}

func (a *fakeAppliance) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *fakeAppliance) Write(ctx context.Context, data []byte) error {
	a.mu.Lock()
	notify := a.notify
	a.mu.Unlock()

	f, err := protocol.DecodeFrame(data)
	if err != nil || len(f.Payload) < 3 || notify == nil {
		return nil
	}

	id := protocol.DataPoint(binary.LittleEndian.Uint16(f.Payload[0:2]))
	switch f.Payload[2] {
	case 0x01: // write
		a.handleWrite(id, f.Payload[3:])
		notify(encodeSingle(2, []byte{0x01}))
	case 0x00: // read
		if value, ok := a.handleRead(id); ok {
			notify(encodeSingle(1, []byte{byte(value)}))
		}
	}
	return nil
}

func (a *fakeAppliance) handleWrite(id protocol.DataPoint, value []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	target, ok := statusFor[id]
	if !ok || a.rejectWrites[id] || len(value) == 0 {
		return
	}
	if _, carried := a.values[target]; !carried {
		return
	}
	if a.settleReads > 0 {
		a.pending[target] = int(value[0])
		a.countdown[target] = a.settleReads
		return
	}
	a.values[target] = int(value[0])
}

func (a *fakeAppliance) handleRead(id protocol.DataPoint) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	value, ok := a.values[id]
	if !ok {
		return 0, false
	}
	if remaining, settling := a.countdown[id]; settling {
		if remaining <= 1 {
			a.values[id] = a.pending[id]
			delete(a.pending, id)
			delete(a.countdown, id)
			return a.values[id], true
		}
		a.countdown[id] = remaining - 1
	}
	return value, true
}

func (a *fakeAppliance) statusValue(id protocol.DataPoint) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[id]
}

func encodeSingle(transaction byte, payload []byte) []byte {
	return protocol.EncodeFrame(&protocol.Frame{
		Kind:        protocol.KindSingle,
		Transaction: transaction,
		Payload:     payload,
	})
}

// defaultValues is a firmware that carries all four setpoints.
func defaultValues() map[protocol.DataPoint]int {
	return map[protocol.DataPoint]int{
		protocol.DpShowerWaterTemperatureStatus: 37,
		protocol.DpAnalSprayIntensityStatus:     3,
		protocol.DpAnalSprayArmPositionStatus:   3,
		protocol.DpActiveUserProfile:            1,
	}
}

// fastOptions keeps verification delays negligible for tests.
func fastOptions(retries int) *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:    retries,
		InitialDelay:  time.Millisecond,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 5 * time.Millisecond,
	}
}

func newTestApplier(appliance *fakeAppliance) *Applier {
	c := client.New(appliance, client.WithTimeout(25*time.Millisecond))
	return NewApplier(c)
}

func TestApplyAndVerifySuccess(t *testing.T) {
	appliance := newFakeAppliance(defaultValues())
	applier := newTestApplier(appliance)

	update := &Update{
		WaterTemperature: Int(38),
		SprayIntensity:   Int(2),
		SprayPosition:    Int(4),
		UserProfile:      Int(2),
	}

	result := applier.ApplyAndVerify(context.Background(), update, fastOptions(2))
	if !result.Success {
		t.Fatalf("ApplyAndVerify() failed: %v", result.Error)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if got := result.Actual["water temperature"]; got != 38 {
		t.Errorf("actual water temperature = %d, want 38", got)
	}
	if got := appliance.statusValue(protocol.DpAnalSprayArmPositionStatus); got != 4 {
		t.Errorf("appliance spray position = %d, want 4", got)
	}
}

func TestVerifyRetriesUntilSettled(t *testing.T) {
	appliance := newFakeAppliance(defaultValues())
	appliance.settleReads = 2
	applier := newTestApplier(appliance)

	update := &Update{WaterTemperature: Int(39)}
	result := applier.ApplyAndVerify(context.Background(), update, fastOptions(3))
	if !result.Success {
		t.Fatalf("ApplyAndVerify() failed against settling firmware: %v", result.Error)
	}
	if result.Attempts < 2 {
		t.Errorf("Attempts = %d, want at least 2", result.Attempts)
	}
}

func TestVerifyMismatchFails(t *testing.T) {
	appliance := newFakeAppliance(defaultValues())
	appliance.rejectWrites[protocol.DpSetShowerWaterTemperature] = true
	applier := newTestApplier(appliance)

	update := &Update{WaterTemperature: Int(40)}
	result := applier.ApplyAndVerify(context.Background(), update, fastOptions(1))
	if result.Success {
		t.Fatal("ApplyAndVerify() succeeded against firmware that drops writes")
	}
	if len(result.Mismatches) != 1 {
		t.Errorf("Mismatches = %v, want one entry", result.Mismatches)
	}
	if result.Error == nil {
		t.Error("failed result carries no error")
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}
}

func TestVerifySkipsUnansweredPoints(t *testing.T) {
	values := defaultValues()
	delete(values, protocol.DpActiveUserProfile)
	appliance := newFakeAppliance(values)
	applier := newTestApplier(appliance)

	update := &Update{
		SprayIntensity: Int(5),
		UserProfile:    Int(3),
	}
	result := applier.ApplyAndVerify(context.Background(), update, fastOptions(1))
	if !result.Success {
		t.Fatalf("ApplyAndVerify() failed: %v", result.Error)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "user profile" {
		t.Errorf("Skipped = %v, want [user profile]", result.Skipped)
	}
	if _, ok := result.Actual["user profile"]; ok {
		t.Error("unanswered point reported an actual value")
	}
}

func TestApplyRejectsInvalidUpdate(t *testing.T) {
	appliance := newFakeAppliance(defaultValues())
	applier := newTestApplier(appliance)

	update := &Update{WaterTemperature: Int(45)}
	if err := applier.Apply(context.Background(), update); err == nil {
		t.Fatal("Apply() accepted out-of-range temperature")
	}
	if got := appliance.statusValue(protocol.DpShowerWaterTemperatureStatus); got != 37 {
		t.Errorf("appliance temperature = %d, want untouched 37", got)
	}
}

func TestReadCurrent(t *testing.T) {
	values := defaultValues()
	delete(values, protocol.DpAnalSprayArmPositionStatus)
	appliance := newFakeAppliance(values)
	applier := newTestApplier(appliance)

	current, read, err := applier.ReadCurrent(context.Background())
	if err != nil {
		t.Fatalf("ReadCurrent() error: %v", err)
	}
	if current.WaterTemperature != 37 || current.SprayIntensity != 3 || current.UserProfile != 1 {
		t.Errorf("ReadCurrent() = %+v", current)
	}
	if read["spray position"] {
		t.Error("missing point reported as read")
	}
	if !read["water temperature"] || !read["spray intensity"] || !read["user profile"] {
		t.Errorf("read map = %v, want remaining three fields present", read)
	}
}

func TestRollbackToLatest(t *testing.T) {
	appliance := newFakeAppliance(defaultValues())
	applier := newTestApplier(appliance)
	rm := NewRollbackManager(applier)

	if err := rm.SaveSnapshot(context.Background(), "before test change"); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	update := &Update{WaterTemperature: Int(40), SprayIntensity: Int(5)}
	if result := applier.ApplyAndVerify(context.Background(), update, fastOptions(1)); !result.Success {
		t.Fatalf("setup update failed: %v", result.Error)
	}

	result := rm.RollbackToLatest(context.Background())
	if !result.Success {
		t.Fatalf("RollbackToLatest() failed: %v", result.Error)
	}
	if got := appliance.statusValue(protocol.DpShowerWaterTemperatureStatus); got != 37 {
		t.Errorf("temperature after rollback = %d, want 37", got)
	}
	if got := appliance.statusValue(protocol.DpAnalSprayIntensityStatus); got != 3 {
		t.Errorf("intensity after rollback = %d, want 3", got)
	}
}

func TestRollbackWithoutSnapshots(t *testing.T) {
	applier := newTestApplier(newFakeAppliance(defaultValues()))
	rm := NewRollbackManager(applier)

	result := rm.RollbackToLatest(context.Background())
	if result.Success || result.Error == nil {
		t.Error("rollback without snapshots must fail with an error")
	}
}

func TestSafeApplyRollsBackOnFailure(t *testing.T) {
	appliance := newFakeAppliance(defaultValues())
	appliance.rejectWrites[protocol.DpSetShowerWaterTemperature] = true
	applier := newTestApplier(appliance)
	rm := NewRollbackManager(applier)

	update := &Update{WaterTemperature: Int(40)}
	result := rm.SafeApply(context.Background(), update, fastOptions(1), "raise temperature")

	if result.Success {
		t.Fatal("SafeApply() reported success for a dropped write")
	}
	if !result.RollbackAttempted {
		t.Fatal("SafeApply() did not attempt rollback")
	}
	if !result.RollbackSucceeded {
		t.Errorf("rollback failed: %v", result.RollbackResult.Error)
	}
	if got := appliance.statusValue(protocol.DpShowerWaterTemperatureStatus); got != 37 {
		t.Errorf("temperature after safe apply = %d, want 37", got)
	}
}

func TestSnapshotHistoryBounded(t *testing.T) {
	applier := newTestApplier(newFakeAppliance(defaultValues()))
	rm := NewRollbackManager(applier)

	for i := 0; i < 12; i++ {
		if err := rm.SaveSnapshot(context.Background(), "bulk"); err != nil {
			t.Fatalf("SaveSnapshot() error: %v", err)
		}
	}
	if got := len(rm.GetSnapshots()); got != 10 {
		t.Errorf("snapshot count = %d, want capped at 10", got)
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name    string
		update  *Update
		wantErr int
	}{
		{"all valid", &Update{WaterTemperature: Int(37), SprayIntensity: Int(3)}, 0},
		{"empty", &Update{}, 0},
		{"temperature low", &Update{WaterTemperature: Int(33)}, 1},
		{"two invalid", &Update{SprayIntensity: Int(0), UserProfile: Int(9)}, 2},
		{"boundaries", &Update{WaterTemperature: Int(34), SprayIntensity: Int(5), SprayPosition: Int(1), UserProfile: Int(4)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateUpdate(tt.update)
			if len(errs) != tt.wantErr {
				t.Errorf("ValidateUpdate() = %v, want %d errors", errs, tt.wantErr)
			}
		})
	}
}

func TestFormatChanges(t *testing.T) {
	u := &Update{WaterTemperature: Int(38), UserProfile: Int(2)}
	out := u.FormatChanges()
	for _, want := range []string{"38°C", "Profile", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatChanges() missing %q:\n%s", want, out)
		}
	}

	empty := (&Update{}).FormatChanges()
	if !strings.Contains(empty, "no changes") {
		t.Errorf("FormatChanges() of empty update:\n%s", empty)
	}
}

func TestFormatDiff(t *testing.T) {
	before := Setpoints{WaterTemperature: 37, SprayIntensity: 3, SprayPosition: 3, UserProfile: 1}
	after := Setpoints{WaterTemperature: 39, SprayIntensity: 3, SprayPosition: 3, UserProfile: 1}

	out := FormatDiff(before, after)
	if !strings.Contains(out, "37°C → 39°C") {
		t.Errorf("FormatDiff() missing temperature change:\n%s", out)
	}

	same := FormatDiff(before, before)
	if !strings.Contains(same, "no differences") {
		t.Errorf("FormatDiff() of identical setpoints:\n%s", same)
	}
}
