// Package config provides user configuration management for rodbus.
//
// This package manages a YAML-based registry that stores named Modbus
// devices (endpoint, unit identifier, timeout, and named data points) plus
// application preferences. The file follows OS-specific conventions for its
// storage location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/rodbus/config.yaml or $HOME/.config/rodbus/config.yaml
//   - macOS: $HOME/.config/rodbus/config.yaml
//   - Windows: %LOCALAPPDATA%\rodbus\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetDevice("boiler", &config.Device{
//	    Endpoint:  "tcp://192.168.1.40:502",
//	    UnitID:    1,
//	    TimeoutMS: 1000,
//	    Points: map[string]*config.Point{
//	        "supply_temp": {Address: 100, Type: config.PointHoldingRegister},
//	    },
//	})
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across
// goroutines. File operations are protected by a mutex to ensure atomic
// writes.
package config
