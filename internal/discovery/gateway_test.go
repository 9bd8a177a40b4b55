package discovery

import "testing"

func TestGatewayEndpoint(t *testing.T) {
	gw := &Gateway{Name: "plant-floor-gw", IP: "192.168.1.40", Port: 502}
	if got := gw.Endpoint(); got != "tcp://192.168.1.40:502" {
		t.Errorf("Endpoint() = %q, want tcp://192.168.1.40:502", got)
	}
}

func TestGatewayString(t *testing.T) {
	gw := &Gateway{Name: "gw", Hostname: "gw.local.", IP: "10.0.0.5", Port: 10502}
	want := "Modbus gateway gw (gw.local.) at 10.0.0.5:10502"
	if got := gw.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGatewayGetMetadataNilMap(t *testing.T) {
	gw := &Gateway{}
	if got := gw.GetMetadata("units"); got != "" {
		t.Errorf("GetMetadata() on nil map = %q, want empty", got)
	}
}
