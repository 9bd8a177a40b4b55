package config

import "time"

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by user-chosen device name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// PointType identifies which of the four Modbus data tables a point lives in.
type PointType string

// The four Modbus data tables.
const (
	PointCoil            PointType = "coil"
	PointDiscreteInput   PointType = "discrete_input"
	PointHoldingRegister PointType = "holding_register"
	PointInputRegister   PointType = "input_register"
)

// Valid reports whether t names a known data table.
func (t PointType) Valid() bool {
	switch t {
	case PointCoil, PointDiscreteInput, PointHoldingRegister, PointInputRegister:
		return true
	}
	return false
}

// Device represents one configured Modbus device or gateway unit.
type Device struct {
	Nickname  string            `yaml:"nickname,omitempty"` // User-friendly display name
	Endpoint  string            `yaml:"endpoint"`           // Channel endpoint (e.g., "tcp://192.168.1.40:502")
	UnitID    uint8             `yaml:"unit_id"`            // Modbus unit identifier
	TimeoutMS int               `yaml:"timeout_ms,omitempty"`
	LastSeen  time.Time         `yaml:"last_seen,omitempty"` // Last discovery/connection time
	Points    map[string]*Point `yaml:"points,omitempty"`    // Named data points, keyed by point name
}

// Timeout returns the configured response timeout, or a 1 second default.
func (d *Device) Timeout() time.Duration {
	if d.TimeoutMS <= 0 {
		return time.Second
	}
	return time.Duration(d.TimeoutMS) * time.Millisecond
}

// Point is one named address in a device's data tables.
type Point struct {
	Address uint16    `yaml:"address"`
	Type    PointType `yaml:"type"`
	Label   string    `yaml:"label,omitempty"` // Optional display label
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool  `yaml:"auto_discover"`    // Enable mDNS discovery when no endpoint is given
	DiscoverTimeout int   `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
	DefaultUnitID   uint8 `yaml:"default_unit_id"`  // Unit id used when a device entry has none
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
			DefaultUnitID:   0xFF,
		},
	}
}

// GetDevice retrieves a device by name. Returns nil if it doesn't exist.
func (r *Registry) GetDevice(name string) *Device {
	if r.Devices == nil {
		return nil
	}
	return r.Devices[name]
}

// SetDevice adds or replaces a device entry.
func (r *Registry) SetDevice(name string, device *Device) {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	r.Devices[name] = device
}

// RemoveDevice deletes a device entry. Returns true if it existed.
func (r *Registry) RemoveDevice(name string) bool {
	if r.Devices == nil {
		return false
	}
	_, ok := r.Devices[name]
	delete(r.Devices, name)
	return ok
}
