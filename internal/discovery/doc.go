// Package discovery provides mDNS-based discovery of Modbus TCP gateways.
//
// This package implements multicast DNS (mDNS) service discovery to locate
// Modbus TCP gateways and devices that advertise the "_modbus._tcp" service
// type on the local network.
//
// # Discovery Process
//
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for "_modbus._tcp" service advertisements
//  3. Collects gateway information (instance name, hostname, IP, port, TXT metadata)
//  4. Returns the list of discovered gateways after the timeout period
//
// # Usage Example
//
//	gateways, err := discovery.ScanForGateways(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, gw := range gateways {
//	    fmt.Printf("Found: %s at %s\n", gw.Name, gw.Endpoint())
//	}
//
// # Network Requirements
//
//   - Requires multicast support on the network interface
//   - Gateways must be on the same local network segment
//   - Firewall must allow mDNS (UDP port 5353)
//
// Not every Modbus device advertises itself over mDNS; discovery is a
// convenience, and an endpoint can always be given explicitly instead.
package discovery
