package modbus

// UnitID identifies a device within a single bus segment. Modbus TCP carries
// it in the MBAP header so that gateways can route requests onto a serial
// line behind them.
type UnitID uint8

// DefaultUnitID is the conventional unit identifier used when no specific
// unit is configured. Gateways disagree on whether 0xFF means broadcast or
// "no unit id"; rodbus treats it as an opaque default and attaches no special
// behavior to it.
const DefaultUnitID UnitID = 0xFF

// Protocol limits on the number of items one read request may address.
const (
	// MaxReadRegisters is the maximum register count for function codes
	// 0x03 and 0x04.
	MaxReadRegisters uint16 = 125

	// MaxReadBits is the maximum coil/discrete-input count for function
	// codes 0x01 and 0x02.
	MaxReadBits uint16 = 2000
)

// AddressRange is a contiguous span of addressable items (coils, discrete
// inputs, or registers) requested in one transaction.
type AddressRange struct {
	Start uint16
	Count uint16
}

// validate applies the protocol addressing rules against maxCount. It is
// pure: no I/O, no queue interaction.
func (r AddressRange) validate(maxCount uint16) error {
	if r.Count == 0 {
		return &InvalidRequestError{Reason: CountOfZero}
	}

	// Widen to 32 bits before summing so the last address cannot wrap.
	last := uint32(r.Start) + uint32(r.Count) - 1
	if last > 0xFFFF {
		return &InvalidRequestError{Reason: AddressOverflow, Start: r.Start, Count: r.Count}
	}

	if r.Count > maxCount {
		return &InvalidRequestError{Reason: CountTooBigForType, Count: r.Count, Max: maxCount}
	}

	return nil
}

// ValidateForBits checks the range against the coil/discrete-input limit.
func (r AddressRange) ValidateForBits() error {
	return r.validate(MaxReadBits)
}

// ValidateForRegisters checks the range against the register limit.
func (r AddressRange) ValidateForRegisters() error {
	return r.validate(MaxReadRegisters)
}

// Wire encodings for the two coil states. Anything else in a coil value
// field is a protocol violation.
const (
	coilOnPattern  uint16 = 0xFF00
	coilOffPattern uint16 = 0x0000
)

// CoilState is the state of a single-bit output, carried on the wire as one
// of two fixed 16-bit patterns.
type CoilState uint16

// The two valid coil states.
const (
	CoilOn  CoilState = CoilState(coilOnPattern)
	CoilOff CoilState = CoilState(coilOffPattern)
)

// CoilStateFromBool maps a boolean to the canonical coil state.
func CoilStateFromBool(on bool) CoilState {
	if on {
		return CoilOn
	}
	return CoilOff
}

// CoilStateFromUint16 decodes a wire value into a coil state. Only the two
// canonical patterns are accepted; in particular a nonzero value that is not
// 0xFF00 is an error, never "on".
func CoilStateFromUint16(value uint16) (CoilState, error) {
	switch value {
	case coilOnPattern:
		return CoilOn, nil
	case coilOffPattern:
		return CoilOff, nil
	default:
		return CoilOff, &UnknownCoilStateError{Value: value}
	}
}

// Uint16 returns the canonical wire pattern for the state.
func (s CoilState) Uint16() uint16 {
	return uint16(s)
}

// IsOn reports whether the state is CoilOn.
func (s CoilState) IsOn() bool {
	return s == CoilOn
}

// String returns "ON" or "OFF" (or the raw pattern for an invalid state).
func (s CoilState) String() string {
	switch s {
	case CoilOn:
		return "ON"
	case CoilOff:
		return "OFF"
	default:
		return "INVALID"
	}
}

// RegisterValue is one 16-bit data word read from or written to a device.
type RegisterValue uint16

// Uint16 returns the raw register word.
func (v RegisterValue) Uint16() uint16 {
	return uint16(v)
}

// Indexed binds a single address to a value. It is both the unit of read
// results and the payload of single-item writes.
type Indexed[T any] struct {
	Index uint16
	Value T
}
