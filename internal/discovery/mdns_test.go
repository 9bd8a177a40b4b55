package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "gateway with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "plant-floor-gw"},
				HostName:      "plant-floor-gw.local.",
				Port:          502,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"units=1,2,5", "vendor=acme"},
			},
			wantIP:   "192.168.4.16",
			wantPort: 502,
		},
		{
			name: "custom port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bench-gw"},
				HostName:      "bench-gw.local.",
				Port:          10502,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantIP:   "10.0.0.5",
			wantPort: 10502,
		},
		{
			name: "missing port defaults to 502",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bare-gw"},
				HostName:      "bare-gw.local.",
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantIP:   "172.16.0.1",
			wantPort: 502,
		},
		{
			name: "IPv6 only falls back to IPv6",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "v6-gw"},
				HostName:      "v6-gw.local.",
				Port:          502,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 502,
		},
		{
			name: "no address is unusable",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ghost-gw"},
				HostName:      "ghost-gw.local.",
				Port:          502,
			},
			wantNil: true,
		},
		{
			name: "missing instance name is unusable",
			entry: &zeroconf.ServiceEntry{
				HostName: "anon.local.",
				Port:     502,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := parseServiceEntry(tt.entry)
			if (gw == nil) != tt.wantNil {
				t.Fatalf("parseServiceEntry() = %v, wantNil %v", gw, tt.wantNil)
			}
			if gw == nil {
				return
			}
			if gw.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", gw.IP, tt.wantIP)
			}
			if gw.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", gw.Port, tt.wantPort)
			}
			if gw.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt should be set")
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "gw"},
		HostName:      "gw.local.",
		Port:          502,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.40")},
		Text:          []string{"units=1,2", "vendor=acme", "flag"},
	}

	gw := parseServiceEntry(entry)
	if gw == nil {
		t.Fatal("parseServiceEntry() returned nil")
	}
	if got := gw.GetMetadata("units"); got != "1,2" {
		t.Errorf("units = %q, want \"1,2\"", got)
	}
	if got := gw.GetMetadata("vendor"); got != "acme" {
		t.Errorf("vendor = %q, want acme", got)
	}
	if got := gw.GetMetadata("flag"); got != "" {
		t.Errorf("bare key = %q, want empty", got)
	}
	if got := gw.GetMetadata("missing"); got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}
}

func TestNewScannerDefaults(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}
