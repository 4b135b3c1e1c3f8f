package client

import (
	"sync"

	"github.com/muurk/aquaclean/internal/protocol"
)

// Tentative names a boolean parameter that was flipped optimistically
// after a toggle command was acknowledged, but not yet confirmed by a
// status read.
type Tentative string

const (
	TentativeLid              Tentative = "lid"
	TentativeAnalShower       Tentative = "anal_shower"
	TentativeLadyShower       Tentative = "lady_shower"
	TentativeDryer            Tentative = "dryer"
	TentativeOrientationLight Tentative = "orientation_light"
)

// State tracks the last confirmed parameter snapshot for one appliance
// plus any tentative toggles layered on top. The next status read replaces
// the snapshot wholesale and clears all tentative marks, so an optimistic
// flip can never outlive real data.
type State struct {
	mu        sync.RWMutex
	ident     protocol.DeviceIdentification
	hasIdent  bool
	confirmed protocol.SystemParameters
	hasStatus bool
	tentative map[Tentative]struct{}
}

// NewState returns a tracker seeded with factory defaults.
func NewState() *State {
	return &State{
		confirmed: protocol.DefaultSystemParameters(),
		tentative: make(map[Tentative]struct{}),
	}
}

// SetIdentification records the appliance's identity.
func (s *State) SetIdentification(ident protocol.DeviceIdentification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ident = ident
	s.hasIdent = true
}

// Identification returns the recorded identity and whether one exists.
func (s *State) Identification() (protocol.DeviceIdentification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ident, s.hasIdent
}

// ApplyStatus installs a fresh confirmed snapshot, reconciling away every
// tentative toggle.
func (s *State) ApplyStatus(params protocol.SystemParameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = params
	s.hasStatus = true
	s.tentative = make(map[Tentative]struct{})
}

// MarkTentative records an optimistic toggle of one parameter. Marking the
// same parameter twice cancels out, matching the toggle semantics on the
// appliance.
func (s *State) MarkTentative(t Tentative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tentative[t]; ok {
		delete(s.tentative, t)
		return
	}
	s.tentative[t] = struct{}{}
}

// Confirmed reports whether at least one real status read has landed.
func (s *State) Confirmed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasStatus
}

// Snapshot returns the confirmed parameters with tentative toggles
// applied, plus the list of parameters that are currently tentative.
func (s *State) Snapshot() (protocol.SystemParameters, []Tentative) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := s.confirmed
	pending := make([]Tentative, 0, len(s.tentative))
	for t := range s.tentative {
		pending = append(pending, t)
		switch t {
		case TentativeLid:
			params.LidOpen = !params.LidOpen
		case TentativeAnalShower:
			params.AnalShowerRunning = !params.AnalShowerRunning
		case TentativeLadyShower:
			params.LadyShowerRunning = !params.LadyShowerRunning
		case TentativeDryer:
			params.DryerRunning = !params.DryerRunning
		case TentativeOrientationLight:
			if params.OrientationLight == 0 {
				params.OrientationLight = 1
			} else {
				params.OrientationLight = 0
			}
		}
	}
	return params, pending
}
