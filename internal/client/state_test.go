package client

import (
	"testing"

	"github.com/muurk/aquaclean/internal/protocol"
)

func TestStateDefaults(t *testing.T) {
	s := NewState()

	params, pending := s.Snapshot()
	if params.WaterTemperature != 37 || params.SprayIntensity != 3 {
		t.Errorf("defaults = temp %d intensity %d, want 37/3",
			params.WaterTemperature, params.SprayIntensity)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %v, want none", pending)
	}
	if s.Confirmed() {
		t.Error("fresh state reports confirmed")
	}
}

func TestStateTentativeDoubleToggleCancels(t *testing.T) {
	s := NewState()

	s.MarkTentative(TentativeAnalShower)
	if params, _ := s.Snapshot(); !params.AnalShowerRunning {
		t.Error("AnalShowerRunning = false after one tentative toggle, want true")
	}

	s.MarkTentative(TentativeAnalShower)
	params, pending := s.Snapshot()
	if params.AnalShowerRunning {
		t.Error("AnalShowerRunning = true after two tentative toggles, want false")
	}
	if len(pending) != 0 {
		t.Errorf("pending = %v, want none after cancelling pair", pending)
	}
}

func TestStateStatusReconcilesTentative(t *testing.T) {
	s := NewState()
	s.MarkTentative(TentativeLid)
	s.MarkTentative(TentativeDryer)

	confirmed := protocol.DefaultSystemParameters()
	confirmed.DryerRunning = true
	s.ApplyStatus(confirmed)

	params, pending := s.Snapshot()
	if len(pending) != 0 {
		t.Errorf("pending = %v, want cleared by status read", pending)
	}
	if params.LidOpen {
		t.Error("LidOpen = true, want confirmed value false")
	}
	if !params.DryerRunning {
		t.Error("DryerRunning = false, want confirmed value true")
	}
	if !s.Confirmed() {
		t.Error("state not confirmed after ApplyStatus")
	}
}

func TestStateOrientationLightTentative(t *testing.T) {
	s := NewState()

	s.MarkTentative(TentativeOrientationLight)
	if params, _ := s.Snapshot(); params.OrientationLight != 1 {
		t.Errorf("OrientationLight = %d, want 1", params.OrientationLight)
	}
}
