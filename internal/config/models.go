package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for appliances and application preferences.
type Registry struct {
	Version     int                   `yaml:"version"`
	Appliances  map[string]*Appliance `yaml:"appliances,omitempty"` // Keyed by appliance serial number
	Preferences *Preferences          `yaml:"preferences,omitempty"`
}

// Appliance represents user-defined metadata for a single appliance.
// This is keyed by the appliance's serial number in the Registry.
type Appliance struct {
	Nickname   string               `yaml:"nickname,omitempty"`    // User-friendly name
	BridgeAddr string               `yaml:"bridge_addr,omitempty"` // Last known bridge host:port
	MAC        string               `yaml:"mac,omitempty"`         // Appliance Bluetooth address
	LastSeen   time.Time            `yaml:"last_seen,omitempty"`   // Last discovery/connection time
	Profiles   map[int]*ProfileMeta `yaml:"profiles,omitempty"`    // User profile metadata (keyed 1-4)
	Features   map[string]bool      `yaml:"features,omitempty"`    // Probed feature support
}

// ProfileMeta represents user-defined metadata for one stored user profile.
// This is purely client-side information; the appliance stores only the
// setpoints, not who they belong to.
type ProfileMeta struct {
	Label string `yaml:"label"`          // User-defined label (e.g., "Alex")
	Icon  string `yaml:"icon,omitempty"` // Optional emoji/icon for display
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Enable automatic mDNS discovery on startup
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
	ResponseTimeout int  `yaml:"response_timeout"` // Appliance response timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:    1,
		Appliances: make(map[string]*Appliance),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
			ResponseTimeout: 10,
		},
	}
}

// GetAppliance retrieves appliance metadata by serial number.
// Returns nil if the appliance doesn't exist in the registry.
func (r *Registry) GetAppliance(serial string) *Appliance {
	return r.Appliances[serial]
}

// EnsureAppliance ensures an appliance entry exists in the registry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureAppliance(serial string) *Appliance {
	if r.Appliances == nil {
		r.Appliances = make(map[string]*Appliance)
	}

	if appliance, exists := r.Appliances[serial]; exists {
		return appliance
	}

	appliance := &Appliance{
		Profiles: make(map[int]*ProfileMeta),
	}
	r.Appliances[serial] = appliance
	return appliance
}

// UpdateApplianceLastSeen updates the last seen timestamp and bridge
// address for an appliance.
func (r *Registry) UpdateApplianceLastSeen(serial, bridgeAddr string) {
	appliance := r.EnsureAppliance(serial)
	appliance.LastSeen = time.Now()
	appliance.BridgeAddr = bridgeAddr
}

// SetProfileLabel sets or updates the user profile metadata for an appliance.
func (r *Registry) SetProfileLabel(serial string, profile int, label, icon string) {
	appliance := r.EnsureAppliance(serial)

	if appliance.Profiles == nil {
		appliance.Profiles = make(map[int]*ProfileMeta)
	}

	appliance.Profiles[profile] = &ProfileMeta{
		Label: label,
		Icon:  icon,
	}
}

// SetApplianceNickname sets a user-friendly nickname for an appliance.
func (r *Registry) SetApplianceNickname(serial, nickname string) {
	appliance := r.EnsureAppliance(serial)
	appliance.Nickname = nickname
}

// SetApplianceFeatures records the probed feature support map.
func (r *Registry) SetApplianceFeatures(serial string, features map[string]bool) {
	appliance := r.EnsureAppliance(serial)
	appliance.Features = features
}
