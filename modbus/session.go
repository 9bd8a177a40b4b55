package modbus

import (
	"context"
	"time"
)

// Session is a handle for issuing requests to one unit through a Channel.
// It is a small value: copying it (or calling Clone) creates another
// concurrent caller over the same underlying queue, never a new connection.
// Every copy may be used from its own goroutine.
type Session struct {
	unit    UnitID
	timeout time.Duration
	queue   *requestQueue
}

// Clone returns an independent handle sharing this session's channel.
func (s Session) Clone() Session {
	return s
}

// UnitID returns the unit this session addresses.
func (s Session) UnitID() UnitID {
	return s.unit
}

// Timeout returns the response timeout hint carried on each request.
func (s Session) Timeout() time.Duration {
	return s.timeout
}

// makeServiceCall runs the shared dispatch algorithm for one capability:
// validate locally, create the single-use completion signal, enqueue the
// transaction envelope, and suspend until the transport task resolves it.
// The result is returned exactly as delivered.
func makeServiceCall[Req, Resp any](ctx context.Context, s Session, svc service[Req, Resp], req Req) (Resp, error) {
	var zero Resp
	if err := svc.validate(req); err != nil {
		return zero, err
	}

	// Buffered so the transport task's single send never blocks, whether
	// or not the caller is still waiting.
	done := make(chan result[Resp], 1)
	tr := svc.wrap(header{unit: s.unit, timeout: s.timeout}, req, done)

	if err := s.queue.enqueue(ctx, tr); err != nil {
		return zero, err
	}
	return await(ctx, s.queue, done)
}

// ReadCoils reads a range of coils (function code 0x01), returning one entry
// per addressed coil in ascending address order.
func (s Session) ReadCoils(ctx context.Context, r AddressRange) ([]Indexed[bool], error) {
	return makeServiceCall(ctx, s, readCoilsService, r)
}

// ReadDiscreteInputs reads a range of discrete inputs (function code 0x02).
func (s Session) ReadDiscreteInputs(ctx context.Context, r AddressRange) ([]Indexed[bool], error) {
	return makeServiceCall(ctx, s, readDiscreteInputsService, r)
}

// ReadHoldingRegisters reads a range of holding registers (function code
// 0x03).
func (s Session) ReadHoldingRegisters(ctx context.Context, r AddressRange) ([]Indexed[RegisterValue], error) {
	return makeServiceCall(ctx, s, readHoldingRegistersService, r)
}

// ReadInputRegisters reads a range of input registers (function code 0x04).
func (s Session) ReadInputRegisters(ctx context.Context, r AddressRange) ([]Indexed[RegisterValue], error) {
	return makeServiceCall(ctx, s, readInputRegistersService, r)
}

// WriteSingleCoil writes one coil (function code 0x05) and returns the
// device's confirmation echo, which always equals what was sent; a mismatch
// surfaces as an error instead.
func (s Session) WriteSingleCoil(ctx context.Context, value Indexed[CoilState]) (Indexed[CoilState], error) {
	return makeServiceCall(ctx, s, writeSingleCoilService, value)
}

// WriteSingleRegister writes one holding register (function code 0x06) with
// the same confirmation semantics as WriteSingleCoil.
func (s Session) WriteSingleRegister(ctx context.Context, value Indexed[RegisterValue]) (Indexed[RegisterValue], error) {
	return makeServiceCall(ctx, s, writeSingleRegisterService, value)
}

// Handler receives the outcome of a callback-session request. It is invoked
// exactly once per request, from the request's own goroutine.
type Handler[T any] func(value T, err error)

// CallbackSession wraps a Session with a fire-and-forget calling style: each
// request runs in its own goroutine over a cloned handle and hands its
// outcome to a caller-supplied handler instead of suspending the caller.
// Overlapping requests complete in whatever order the transport task
// resolves them.
type CallbackSession struct {
	inner Session
}

// NewCallbackSession wraps an existing session.
func NewCallbackSession(inner Session) CallbackSession {
	return CallbackSession{inner: inner}
}

// startRequest launches the dispatch algorithm on a cloned handle and
// delivers the outcome to handler.
func startRequest[Req, Resp any](s CallbackSession, svc service[Req, Resp], req Req, handler Handler[Resp]) {
	session := s.inner.Clone()
	go func() {
		value, err := makeServiceCall(context.Background(), session, svc, req)
		handler(value, err)
	}()
}

// ReadCoils reads a range of coils and delivers the outcome to handler. The
// call returns immediately.
func (s CallbackSession) ReadCoils(r AddressRange, handler Handler[[]Indexed[bool]]) {
	startRequest(s, readCoilsService, r, handler)
}
