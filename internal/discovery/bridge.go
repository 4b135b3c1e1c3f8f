package discovery

import (
	"fmt"
	"time"
)

// Bridge is a BLE bridge found on the local network. A bridge pairs with
// one appliance over Bluetooth and exposes its link as a websocket.
type Bridge struct {
	// Name is the mDNS instance name (e.g., "aquaclean-bridge-a1b2c3")
	Name string

	// Hostname is the mDNS hostname (e.g., "bridge-a1b2c3.local.")
	Hostname string

	// IP is the bridge address, preferring IPv4
	IP string

	// Port is the websocket port
	Port int

	// ApplianceMAC is the Bluetooth address of the paired appliance,
	// taken from the "mac" TXT record when present
	ApplianceMAC string

	// Serial is the paired appliance serial from the "serial" TXT record
	Serial string

	// Metadata holds the remaining mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the bridge was seen
	DiscoveredAt time.Time
}

// String returns a human-readable one-liner for the bridge.
func (b *Bridge) String() string {
	if b.Serial != "" {
		return fmt.Sprintf("Bridge %s (appliance %s) at %s:%d", b.Name, b.Serial, b.IP, b.Port)
	}
	return fmt.Sprintf("Bridge %s at %s:%d", b.Name, b.IP, b.Port)
}

// Addr returns the host:port the websocket transport dials.
func (b *Bridge) Addr() string {
	return fmt.Sprintf("%s:%d", b.IP, b.Port)
}

// GetMetadata retrieves a TXT record value by key, or an empty string.
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
