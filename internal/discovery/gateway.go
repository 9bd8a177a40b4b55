package discovery

import (
	"fmt"
	"time"
)

// Gateway represents a discovered Modbus TCP gateway on the network.
type Gateway struct {
	// Name is the mDNS service instance name (e.g., "plant-floor-gw")
	Name string

	// Hostname is the mDNS hostname (e.g., "plant-floor-gw.local.")
	Hostname string

	// IP is the IPv4 address (IPv6 is used only when no IPv4 was advertised)
	IP string

	// Port is the Modbus TCP port (typically 502)
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "units=1,2,5", "vendor=..."
	Metadata map[string]string

	// DiscoveredAt is when the gateway was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the gateway
func (g *Gateway) String() string {
	return fmt.Sprintf("Modbus gateway %s (%s) at %s:%d", g.Name, g.Hostname, g.IP, g.Port)
}

// Endpoint returns the channel endpoint URL for the gateway
func (g *Gateway) Endpoint() string {
	return fmt.Sprintf("tcp://%s:%d", g.IP, g.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (g *Gateway) GetMetadata(key string) string {
	if g.Metadata == nil {
		return ""
	}
	return g.Metadata[key]
}
