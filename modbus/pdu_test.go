package modbus

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeReadRequest(t *testing.T) {
	tests := []struct {
		name string
		fc   FunctionCode
		rng  AddressRange
		want []byte
	}{
		{
			name: "read coils",
			fc:   FuncReadCoils,
			rng:  AddressRange{Start: 0x0013, Count: 0x0025},
			want: []byte{0x01, 0x00, 0x13, 0x00, 0x25},
		},
		{
			name: "read holding registers at top of address space",
			fc:   FuncReadHoldingRegisters,
			rng:  AddressRange{Start: 0xFFFF, Count: 1},
			want: []byte{0x03, 0xFF, 0xFF, 0x00, 0x01},
		},
		{
			name: "read input registers",
			fc:   FuncReadInputRegisters,
			rng:  AddressRange{Start: 8, Count: 1},
			want: []byte{0x04, 0x00, 0x08, 0x00, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeReadRequest(tt.fc, tt.rng)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("encodeReadRequest() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncodeWriteSingleRequest(t *testing.T) {
	got := encodeWriteSingleRequest(FuncWriteSingleCoil, 0x00AC, 0xFF00)
	want := []byte{0x05, 0x00, 0xAC, 0xFF, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeWriteSingleRequest() = % X, want % X", got, want)
	}
}

func TestCheckResponseFunction(t *testing.T) {
	tests := []struct {
		name     string
		fc       FunctionCode
		pdu      []byte
		wantErr  bool
		wantCode ExceptionCode
	}{
		{
			name: "matching function",
			fc:   FuncReadCoils,
			pdu:  []byte{0x01, 0x01, 0x00},
		},
		{
			name:     "exception response",
			fc:       FuncReadHoldingRegisters,
			pdu:      []byte{0x83, 0x02},
			wantErr:  true,
			wantCode: ExceptionIllegalDataAddress,
		},
		{
			name:    "wrong function code",
			fc:      FuncReadCoils,
			pdu:     []byte{0x02, 0x01, 0x00},
			wantErr: true,
		},
		{
			name:    "empty PDU",
			fc:      FuncReadCoils,
			pdu:     nil,
			wantErr: true,
		},
		{
			name:    "truncated exception",
			fc:      FuncReadCoils,
			pdu:     []byte{0x81},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkResponseFunction(tt.fc, tt.pdu)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkResponseFunction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantCode != 0 {
				var exc *ExceptionError
				if !errors.As(err, &exc) {
					t.Fatalf("error should be *ExceptionError, got %T", err)
				}
				if exc.Code != tt.wantCode {
					t.Errorf("exception code = %v, want %v", exc.Code, tt.wantCode)
				}
				if exc.Function != tt.fc {
					t.Errorf("exception function = 0x%02X, want 0x%02X", uint8(exc.Function), uint8(tt.fc))
				}
			}
		})
	}
}

func TestDecodeBitsResponse(t *testing.T) {
	tests := []struct {
		name    string
		rng     AddressRange
		pdu     []byte
		want    []bool
		wantErr bool
	}{
		{
			name: "ten coils over two bytes, LSB first",
			rng:  AddressRange{Start: 20, Count: 10},
			// 0xCD = 1100 1101, 0x01 = bit 8 set
			pdu:  []byte{0x01, 0x02, 0xCD, 0x01},
			want: []bool{true, false, true, true, false, false, true, true, true, false},
		},
		{
			name: "exactly one byte",
			rng:  AddressRange{Start: 0, Count: 8},
			pdu:  []byte{0x01, 0x01, 0x80},
			want: []bool{false, false, false, false, false, false, false, true},
		},
		{
			name:    "byte count does not cover the requested bits",
			rng:     AddressRange{Start: 0, Count: 10},
			pdu:     []byte{0x01, 0x01, 0xFF},
			wantErr: true,
		},
		{
			name:    "header byte count disagrees with payload",
			rng:     AddressRange{Start: 0, Count: 10},
			pdu:     []byte{0x01, 0x02, 0xFF},
			wantErr: true,
		},
		{
			name:    "missing byte count",
			rng:     AddressRange{Start: 0, Count: 1},
			pdu:     []byte{0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBitsResponse(FuncReadCoils, tt.rng, tt.pdu)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeBitsResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("decoded %d bits, want %d", len(got), len(tt.want))
			}
			for i, v := range got {
				if v.Index != tt.rng.Start+uint16(i) {
					t.Errorf("values[%d].Index = %d, want %d", i, v.Index, tt.rng.Start+uint16(i))
				}
				if v.Value != tt.want[i] {
					t.Errorf("values[%d].Value = %v, want %v", i, v.Value, tt.want[i])
				}
			}
		})
	}
}

func TestDecodeRegistersResponse(t *testing.T) {
	tests := []struct {
		name    string
		rng     AddressRange
		pdu     []byte
		want    []uint16
		wantErr bool
	}{
		{
			name: "two registers big endian",
			rng:  AddressRange{Start: 107, Count: 2},
			pdu:  []byte{0x03, 0x04, 0x02, 0x2B, 0x00, 0x64},
			want: []uint16{0x022B, 0x0064},
		},
		{
			name:    "byte count is not twice the register count",
			rng:     AddressRange{Start: 0, Count: 2},
			pdu:     []byte{0x03, 0x02, 0x00, 0x01},
			wantErr: true,
		},
		{
			name:    "truncated payload",
			rng:     AddressRange{Start: 0, Count: 2},
			pdu:     []byte{0x03, 0x04, 0x00, 0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRegistersResponse(FuncReadHoldingRegisters, tt.rng, tt.pdu)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeRegistersResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			for i, v := range got {
				if v.Index != tt.rng.Start+uint16(i) {
					t.Errorf("values[%d].Index = %d, want %d", i, v.Index, tt.rng.Start+uint16(i))
				}
				if v.Value.Uint16() != tt.want[i] {
					t.Errorf("values[%d].Value = 0x%04X, want 0x%04X", i, v.Value.Uint16(), tt.want[i])
				}
			}
		})
	}
}

func TestDecodeWriteSingleResponse(t *testing.T) {
	tests := []struct {
		name     string
		pdu      []byte
		wantErr  bool
		mismatch bool
	}{
		{
			name: "exact echo",
			pdu:  []byte{0x06, 0x00, 0x01, 0x00, 0x03},
		},
		{
			name:     "value differs",
			pdu:      []byte{0x06, 0x00, 0x01, 0x00, 0x04},
			wantErr:  true,
			mismatch: true,
		},
		{
			name:     "address differs",
			pdu:      []byte{0x06, 0x00, 0x02, 0x00, 0x03},
			wantErr:  true,
			mismatch: true,
		},
		{
			name:    "wrong length",
			pdu:     []byte{0x06, 0x00, 0x01, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeWriteSingleResponse(FuncWriteSingleRegister, 0x0001, 0x0003, tt.pdu)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeWriteSingleResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.mismatch {
				var mismatch *WriteMismatchError
				if !errors.As(err, &mismatch) {
					t.Fatalf("error should be *WriteMismatchError, got %T", err)
				}
			}
		})
	}
}
