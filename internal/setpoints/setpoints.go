package setpoints

import (
	"fmt"

	"github.com/muurk/aquaclean/internal/protocol"
)

// Setpoints is the user-adjustable comfort configuration of an appliance:
// the values a stored profile consists of.
type Setpoints struct {
	// WaterTemperature in degrees Celsius (34-40)
	WaterTemperature int

	// SprayIntensity level (1-5)
	SprayIntensity int

	// SprayPosition of the spray arm (1-5)
	SprayPosition int

	// UserProfile currently active on the appliance (1-4)
	UserProfile int
}

// FromParameters extracts the setpoints from a status snapshot.
func FromParameters(p protocol.SystemParameters) Setpoints {
	return Setpoints{
		WaterTemperature: p.WaterTemperature,
		SprayIntensity:   p.SprayIntensity,
		SprayPosition:    p.SprayPosition,
		UserProfile:      p.ActiveUserProfile,
	}
}

// Update is a partial setpoint change. Nil fields are left untouched on
// the appliance.
type Update struct {
	WaterTemperature *int
	SprayIntensity   *int
	SprayPosition    *int
	UserProfile      *int
}

// Empty reports whether the update changes nothing.
func (u *Update) Empty() bool {
	return u.WaterTemperature == nil &&
		u.SprayIntensity == nil &&
		u.SprayPosition == nil &&
		u.UserProfile == nil
}

// ApplyTo returns the setpoints expected after this update lands on top of
// a known state.
func (u *Update) ApplyTo(s Setpoints) Setpoints {
	if u.WaterTemperature != nil {
		s.WaterTemperature = *u.WaterTemperature
	}
	if u.SprayIntensity != nil {
		s.SprayIntensity = *u.SprayIntensity
	}
	if u.SprayPosition != nil {
		s.SprayPosition = *u.SprayPosition
	}
	if u.UserProfile != nil {
		s.UserProfile = *u.UserProfile
	}
	return s
}

// String returns a human-readable summary of an update.
func (u *Update) String() string {
	if u.Empty() {
		return "no changes"
	}
	s := ""
	add := func(part string) {
		if s != "" {
			s += ", "
		}
		s += part
	}
	if u.WaterTemperature != nil {
		add(fmt.Sprintf("temperature %d°C", *u.WaterTemperature))
	}
	if u.SprayIntensity != nil {
		add(fmt.Sprintf("intensity %d", *u.SprayIntensity))
	}
	if u.SprayPosition != nil {
		add(fmt.Sprintf("position %d", *u.SprayPosition))
	}
	if u.UserProfile != nil {
		add(fmt.Sprintf("profile %d", *u.UserProfile))
	}
	return s
}

// Int is a convenience for building updates from literals.
func Int(v int) *int {
	return &v
}
