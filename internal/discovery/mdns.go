package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type BLE bridges advertise
	ServiceType = "_aquaclean-bridge._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for bridge discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default websocket port for bridges
	DefaultPort = 8080
)

// Scanner handles mDNS bridge discovery
type Scanner struct {
	// Timeout is the maximum time to wait for bridge discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForBridges discovers all BLE bridges on the local network
func (s *Scanner) ScanForBridges() ([]*Bridge, error) {
	return s.ScanForBridgesWithContext(context.Background())
}

// ScanForBridgesWithContext discovers bridges with a custom context
func (s *Scanner) ScanForBridgesWithContext(ctx context.Context) ([]*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	bridges := make([]*Bridge, 0)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(done)
		for entry := range entries {
			bridge := s.parseServiceEntry(entry)
			if bridge != nil {
				bridges = append(bridges, bridge)
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the browse to finish and the collector to drain
	<-ctx.Done()
	<-done

	return bridges, nil
}

// WaitForBridge waits for the bridge paired with a specific appliance
// serial. Returns the bridge or an error if not found within the timeout.
func (s *Scanner) WaitForBridge(serial string) (*Bridge, error) {
	return s.WaitForBridgeWithContext(context.Background(), serial)
}

// WaitForBridgeWithContext waits for a specific bridge with a custom context
func (s *Scanner) WaitForBridgeWithContext(ctx context.Context, serial string) (*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	bridgeChan := make(chan *Bridge, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			bridge := s.parseServiceEntry(entry)
			if bridge != nil && bridge.Serial == serial {
				bridgeChan <- bridge
				cancel()
				return
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case bridge := <-bridgeChan:
		return bridge, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("bridge for appliance %s not found within timeout", serial)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Bridge.
// Returns nil if the entry lacks a usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Bridge {
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Bridge{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		ApplianceMAC: metadata["mac"],
		Serial:       metadata["serial"],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForBridges is a convenience function with a custom timeout
func ScanForBridges(timeout time.Duration) ([]*Bridge, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForBridges()
}

// FindBridge searches for the bridge paired with an appliance serial
func FindBridge(serial string) (*Bridge, error) {
	scanner := NewScanner()
	return scanner.WaitForBridge(serial)
}
