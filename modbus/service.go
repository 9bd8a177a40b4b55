package modbus

import "time"

// result is the single value a transaction's completion signal delivers.
type result[T any] struct {
	value T
	err   error
}

// header carries the addressing and timeout hint shared by every
// transaction envelope.
type header struct {
	unit    UnitID
	timeout time.Duration
}

// transaction is one queued request envelope. The transport task is its sole
// consumer: it serializes the request PDU, reads the paired response, and
// resolves the completion signal exactly once through resolve or fail.
type transaction interface {
	// unitID is the device the transaction addresses.
	unitID() UnitID

	// responseTimeout is the per-call timeout hint carried for the
	// transport task; the session layer enforces no timer of its own.
	responseTimeout() time.Duration

	// requestPDU encodes the request protocol data unit.
	requestPDU() []byte

	// resolve decodes the response PDU and fires the completion signal
	// with either the decoded payload or the decode error.
	resolve(pdu []byte)

	// fail fires the completion signal with err.
	fail(err error)
}

// service is the capability contract implemented once per function code: how
// to validate a request and how to wrap it into a transaction envelope.
type service[Req, Resp any] struct {
	validate func(Req) error
	wrap     func(h header, req Req, done chan<- result[Resp]) transaction
}

// readBitsTransaction carries function codes 0x01 and 0x02.
type readBitsTransaction struct {
	header
	fc   FunctionCode
	rng  AddressRange
	done chan<- result[[]Indexed[bool]]
}

func (t *readBitsTransaction) unitID() UnitID                 { return t.unit }
func (t *readBitsTransaction) responseTimeout() time.Duration { return t.timeout }
func (t *readBitsTransaction) requestPDU() []byte             { return encodeReadRequest(t.fc, t.rng) }

func (t *readBitsTransaction) resolve(pdu []byte) {
	values, err := decodeBitsResponse(t.fc, t.rng, pdu)
	t.done <- result[[]Indexed[bool]]{value: values, err: err}
}

func (t *readBitsTransaction) fail(err error) {
	t.done <- result[[]Indexed[bool]]{err: err}
}

// readRegistersTransaction carries function codes 0x03 and 0x04.
type readRegistersTransaction struct {
	header
	fc   FunctionCode
	rng  AddressRange
	done chan<- result[[]Indexed[RegisterValue]]
}

func (t *readRegistersTransaction) unitID() UnitID                 { return t.unit }
func (t *readRegistersTransaction) responseTimeout() time.Duration { return t.timeout }
func (t *readRegistersTransaction) requestPDU() []byte             { return encodeReadRequest(t.fc, t.rng) }

func (t *readRegistersTransaction) resolve(pdu []byte) {
	values, err := decodeRegistersResponse(t.fc, t.rng, pdu)
	t.done <- result[[]Indexed[RegisterValue]]{value: values, err: err}
}

func (t *readRegistersTransaction) fail(err error) {
	t.done <- result[[]Indexed[RegisterValue]]{err: err}
}

// writeSingleTransaction carries function codes 0x05 and 0x06. T is the
// typed value the caller gets echoed back; wire is its 16-bit encoding.
type writeSingleTransaction[T any] struct {
	header
	fc      FunctionCode
	request Indexed[T]
	wire    uint16
	done    chan<- result[Indexed[T]]
}

func (t *writeSingleTransaction[T]) unitID() UnitID                 { return t.unit }
func (t *writeSingleTransaction[T]) responseTimeout() time.Duration { return t.timeout }

func (t *writeSingleTransaction[T]) requestPDU() []byte {
	return encodeWriteSingleRequest(t.fc, t.request.Index, t.wire)
}

func (t *writeSingleTransaction[T]) resolve(pdu []byte) {
	err := decodeWriteSingleResponse(t.fc, t.request.Index, t.wire, pdu)
	if err != nil {
		t.done <- result[Indexed[T]]{err: err}
		return
	}
	// Confirmed echo: return what was sent, which the device has verified
	// it applied unchanged.
	t.done <- result[Indexed[T]]{value: t.request}
}

func (t *writeSingleTransaction[T]) fail(err error) {
	t.done <- result[Indexed[T]]{err: err}
}

// One capability value per supported function code. The set is closed: call
// sites select these statically.
var (
	readCoilsService = service[AddressRange, []Indexed[bool]]{
		validate: AddressRange.ValidateForBits,
		wrap: func(h header, r AddressRange, done chan<- result[[]Indexed[bool]]) transaction {
			return &readBitsTransaction{header: h, fc: FuncReadCoils, rng: r, done: done}
		},
	}

	readDiscreteInputsService = service[AddressRange, []Indexed[bool]]{
		validate: AddressRange.ValidateForBits,
		wrap: func(h header, r AddressRange, done chan<- result[[]Indexed[bool]]) transaction {
			return &readBitsTransaction{header: h, fc: FuncReadDiscreteInputs, rng: r, done: done}
		},
	}

	readHoldingRegistersService = service[AddressRange, []Indexed[RegisterValue]]{
		validate: AddressRange.ValidateForRegisters,
		wrap: func(h header, r AddressRange, done chan<- result[[]Indexed[RegisterValue]]) transaction {
			return &readRegistersTransaction{header: h, fc: FuncReadHoldingRegisters, rng: r, done: done}
		},
	}

	readInputRegistersService = service[AddressRange, []Indexed[RegisterValue]]{
		validate: AddressRange.ValidateForRegisters,
		wrap: func(h header, r AddressRange, done chan<- result[[]Indexed[RegisterValue]]) transaction {
			return &readRegistersTransaction{header: h, fc: FuncReadInputRegisters, rng: r, done: done}
		},
	}

	writeSingleCoilService = service[Indexed[CoilState], Indexed[CoilState]]{
		validate: func(Indexed[CoilState]) error { return nil },
		wrap: func(h header, v Indexed[CoilState], done chan<- result[Indexed[CoilState]]) transaction {
			return &writeSingleTransaction[CoilState]{
				header: h, fc: FuncWriteSingleCoil, request: v, wire: v.Value.Uint16(), done: done,
			}
		},
	}

	writeSingleRegisterService = service[Indexed[RegisterValue], Indexed[RegisterValue]]{
		validate: func(Indexed[RegisterValue]) error { return nil },
		wrap: func(h header, v Indexed[RegisterValue], done chan<- result[Indexed[RegisterValue]]) transaction {
			return &writeSingleTransaction[RegisterValue]{
				header: h, fc: FuncWriteSingleRegister, request: v, wire: v.Value.Uint16(), done: done,
			}
		},
	}
)
