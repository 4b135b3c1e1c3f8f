package setpoints

import (
	"fmt"
	"strings"
)

// FormatCompact returns a compact multi-line format suitable for terminal display
func (s Setpoints) FormatCompact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Water Temperature: %d°C\n", s.WaterTemperature))
	b.WriteString(fmt.Sprintf("Spray Intensity:   %d\n", s.SprayIntensity))
	b.WriteString(fmt.Sprintf("Spray Position:    %d\n", s.SprayPosition))
	b.WriteString(fmt.Sprintf("User Profile:      %d\n", s.UserProfile))

	return b.String()
}

// FormatDetailed returns a formatted string with all setpoints and their ranges
func (s Setpoints) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║                  AQUACLEAN COMFORT SETTINGS                    ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")
	b.WriteString("\n")

	b.WriteString("=== Shower ===\n")
	b.WriteString(fmt.Sprintf("Water Temperature: %d°C (range 34-40)\n", s.WaterTemperature))
	b.WriteString(fmt.Sprintf("Spray Intensity:   %d (range 1-5)\n", s.SprayIntensity))
	b.WriteString(fmt.Sprintf("Spray Position:    %d (range 1-5)\n", s.SprayPosition))
	b.WriteString("\n")
	b.WriteString("=== Profile ===\n")
	b.WriteString(fmt.Sprintf("Active Profile:    %d (range 1-4)\n", s.UserProfile))

	return b.String()
}

// FormatChanges returns a formatted string showing what an update will change
func (u *Update) FormatChanges() string {
	var b strings.Builder
	changes := 0

	b.WriteString("=== Setpoint Changes ===\n")

	if u.WaterTemperature != nil {
		b.WriteString(fmt.Sprintf("  Water Temperature: %d°C\n", *u.WaterTemperature))
		changes++
	}
	if u.SprayIntensity != nil {
		b.WriteString(fmt.Sprintf("  Spray Intensity:   %d\n", *u.SprayIntensity))
		changes++
	}
	if u.SprayPosition != nil {
		b.WriteString(fmt.Sprintf("  Spray Position:    %d\n", *u.SprayPosition))
		changes++
	}
	if u.UserProfile != nil {
		b.WriteString(fmt.Sprintf("  User Profile:      %d\n", *u.UserProfile))
		changes++
	}

	if changes == 0 {
		b.WriteString("(no changes specified)\n")
	}

	return b.String()
}

// FormatDiff returns a formatted diff between two setpoint snapshots
func FormatDiff(old, new Setpoints) string {
	var b strings.Builder

	b.WriteString("=== Setpoint Differences ===\n")

	hasChanges := false

	if old.WaterTemperature != new.WaterTemperature {
		b.WriteString(fmt.Sprintf("  Water Temperature: %d°C → %d°C\n", old.WaterTemperature, new.WaterTemperature))
		hasChanges = true
	}
	if old.SprayIntensity != new.SprayIntensity {
		b.WriteString(fmt.Sprintf("  Spray Intensity:   %d → %d\n", old.SprayIntensity, new.SprayIntensity))
		hasChanges = true
	}
	if old.SprayPosition != new.SprayPosition {
		b.WriteString(fmt.Sprintf("  Spray Position:    %d → %d\n", old.SprayPosition, new.SprayPosition))
		hasChanges = true
	}
	if old.UserProfile != new.UserProfile {
		b.WriteString(fmt.Sprintf("  User Profile:      %d → %d\n", old.UserProfile, new.UserProfile))
		hasChanges = true
	}

	if !hasChanges {
		b.WriteString("(no differences detected)\n")
	}

	return b.String()
}
