package setpoints

import (
	"fmt"

	"github.com/muurk/aquaclean/internal/client"
)

// ValidateWaterTemperature validates a shower water temperature setpoint.
// The appliance accepts 34-40 degrees Celsius; anything outside that range
// is silently ignored by the firmware, so it is rejected here instead.
func ValidateWaterTemperature(celsius int) error {
	if celsius < client.MinWaterTemperature || celsius > client.MaxWaterTemperature {
		return fmt.Errorf("water temperature must be %d-%d°C, got %d",
			client.MinWaterTemperature, client.MaxWaterTemperature, celsius)
	}
	return nil
}

// ValidateSprayLevel validates a spray intensity or arm position level (1-5).
func ValidateSprayLevel(level int) error {
	if level < client.MinSprayLevel || level > client.MaxSprayLevel {
		return fmt.Errorf("spray level must be %d-%d, got %d",
			client.MinSprayLevel, client.MaxSprayLevel, level)
	}
	return nil
}

// ValidateUserProfile validates a stored user profile number (1-4).
func ValidateUserProfile(profile int) error {
	if profile < client.MinUserProfile || profile > client.MaxUserProfile {
		return fmt.Errorf("user profile must be %d-%d, got %d",
			client.MinUserProfile, client.MaxUserProfile, profile)
	}
	return nil
}

// ValidateUpdate validates a complete update.
// Returns a slice of validation errors (empty if valid).
func ValidateUpdate(u *Update) []error {
	var errs []error

	if u.WaterTemperature != nil {
		if err := ValidateWaterTemperature(*u.WaterTemperature); err != nil {
			errs = append(errs, err)
		}
	}
	if u.SprayIntensity != nil {
		if err := ValidateSprayLevel(*u.SprayIntensity); err != nil {
			errs = append(errs, fmt.Errorf("intensity: %w", err))
		}
	}
	if u.SprayPosition != nil {
		if err := ValidateSprayLevel(*u.SprayPosition); err != nil {
			errs = append(errs, fmt.Errorf("position: %w", err))
		}
	}
	if u.UserProfile != nil {
		if err := ValidateUserProfile(*u.UserProfile); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
