package modbus

import (
	"errors"
	"testing"
)

func TestAddressRangeValidateForRegisters(t *testing.T) {
	tests := []struct {
		name       string
		rng        AddressRange
		wantErr    bool
		wantReason InvalidRequestReason
	}{
		{
			name: "single register",
			rng:  AddressRange{Start: 0, Count: 1},
		},
		{
			name: "maximum register count",
			rng:  AddressRange{Start: 0, Count: 125},
		},
		{
			name: "maximum count at top of address space",
			rng:  AddressRange{Start: 65411, Count: 125},
		},
		{
			name:       "count of zero",
			rng:        AddressRange{Start: 10, Count: 0},
			wantErr:    true,
			wantReason: CountOfZero,
		},
		{
			name:       "count over register limit",
			rng:        AddressRange{Start: 0, Count: 126},
			wantErr:    true,
			wantReason: CountTooBigForType,
		},
		{
			name:       "span overflows address space",
			rng:        AddressRange{Start: 65500, Count: 100},
			wantErr:    true,
			wantReason: AddressOverflow,
		},
		{
			name:       "last address exactly one past the end",
			rng:        AddressRange{Start: 65535, Count: 2},
			wantErr:    true,
			wantReason: AddressOverflow,
		},
		{
			name: "last address exactly at the end",
			rng:  AddressRange{Start: 65535, Count: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rng.ValidateForRegisters()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateForRegisters() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}

			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error should unwrap to ErrInvalidRequest, got %v", err)
			}
			var invalid *InvalidRequestError
			if !errors.As(err, &invalid) {
				t.Fatalf("error should be *InvalidRequestError, got %T", err)
			}
			if invalid.Reason != tt.wantReason {
				t.Errorf("reason = %v, want %v", invalid.Reason, tt.wantReason)
			}
			if tt.wantReason == CountTooBigForType {
				if invalid.Count != tt.rng.Count || invalid.Max != MaxReadRegisters {
					t.Errorf("error carries (%d, %d), want (%d, %d)", invalid.Count, invalid.Max, tt.rng.Count, MaxReadRegisters)
				}
			}
		})
	}
}

func TestAddressRangeValidateForBits(t *testing.T) {
	// The bit limit is 16x the register limit; make sure the two paths use
	// their own maximum.
	if err := (AddressRange{Start: 0, Count: 2000}).ValidateForBits(); err != nil {
		t.Errorf("2000 bits should be valid, got %v", err)
	}
	if err := (AddressRange{Start: 0, Count: 2001}).ValidateForBits(); err == nil {
		t.Error("2001 bits should exceed the limit")
	}
	if err := (AddressRange{Start: 0, Count: 126}).ValidateForBits(); err != nil {
		t.Errorf("126 bits is well under the bit limit, got %v", err)
	}

	var invalid *InvalidRequestError
	err := (AddressRange{Start: 0, Count: 2001}).ValidateForBits()
	if !errors.As(err, &invalid) {
		t.Fatalf("error should be *InvalidRequestError, got %T", err)
	}
	if invalid.Max != MaxReadBits {
		t.Errorf("reported limit = %d, want %d", invalid.Max, MaxReadBits)
	}
}

func TestCoilStateFromUint16(t *testing.T) {
	tests := []struct {
		name    string
		value   uint16
		want    CoilState
		wantErr bool
	}{
		{name: "on pattern", value: 0xFF00, want: CoilOn},
		{name: "off pattern", value: 0x0000, want: CoilOff},
		{name: "arbitrary nonzero is an error not on", value: 0x0001, wantErr: true},
		{name: "almost-on pattern", value: 0xFF01, wantErr: true},
		{name: "inverted pattern", value: 0x00FF, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoilStateFromUint16(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CoilStateFromUint16(0x%04X) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				var unknown *UnknownCoilStateError
				if !errors.As(err, &unknown) {
					t.Fatalf("error should be *UnknownCoilStateError, got %T", err)
				}
				if unknown.Value != tt.value {
					t.Errorf("error carries value 0x%04X, want 0x%04X", unknown.Value, tt.value)
				}
				return
			}
			if got != tt.want {
				t.Errorf("CoilStateFromUint16(0x%04X) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCoilStateRoundTrip(t *testing.T) {
	for _, on := range []bool{true, false} {
		state := CoilStateFromBool(on)
		if state.IsOn() != on {
			t.Errorf("CoilStateFromBool(%v).IsOn() = %v", on, state.IsOn())
		}
		back, err := CoilStateFromUint16(state.Uint16())
		if err != nil {
			t.Fatalf("round trip of %v failed: %v", state, err)
		}
		if back != state {
			t.Errorf("round trip changed %v into %v", state, back)
		}
	}
}

func TestCoilStateString(t *testing.T) {
	if got := CoilOn.String(); got != "ON" {
		t.Errorf("CoilOn.String() = %q, want ON", got)
	}
	if got := CoilOff.String(); got != "OFF" {
		t.Errorf("CoilOff.String() = %q, want OFF", got)
	}
	if got := CoilState(0x1234).String(); got != "INVALID" {
		t.Errorf("invalid state String() = %q, want INVALID", got)
	}
}
