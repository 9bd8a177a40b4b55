package modbus

import (
	"errors"
	"fmt"
)

// ErrShutdown is returned by every pending and future call once the
// channel's transport task has exited, whether the teardown is detected
// while enqueueing a transaction or while waiting for its completion.
var ErrShutdown = errors.New("modbus channel is shut down")

// ErrInvalidRequest is the sentinel all *InvalidRequestError values unwrap
// to, for use with errors.Is.
var ErrInvalidRequest = errors.New("invalid modbus request")

// InvalidRequestReason classifies why a request failed local validation.
type InvalidRequestReason int

// Validation failure reasons.
const (
	// CountOfZero means the request addressed zero items.
	CountOfZero InvalidRequestReason = iota

	// AddressOverflow means start+count-1 exceeded the 16-bit address space.
	AddressOverflow

	// CountTooBigForType means the count exceeded the per-type protocol
	// maximum (125 registers, 2000 bits).
	CountTooBigForType
)

// InvalidRequestError is a synchronous, pre-transmission validation failure.
// Requests that produce one never reach the request queue.
type InvalidRequestError struct {
	Reason InvalidRequestReason
	Start  uint16 // offending start address (AddressOverflow)
	Count  uint16 // offending count (AddressOverflow, CountTooBigForType)
	Max    uint16 // the limit that was exceeded (CountTooBigForType)
}

func (e *InvalidRequestError) Error() string {
	switch e.Reason {
	case CountOfZero:
		return "invalid modbus request: count of zero"
	case AddressOverflow:
		return fmt.Sprintf("invalid modbus request: start %d with count %d overflows the 16-bit address space", e.Start, e.Count)
	case CountTooBigForType:
		return fmt.Sprintf("invalid modbus request: count %d exceeds the maximum of %d for this type", e.Count, e.Max)
	default:
		return "invalid modbus request"
	}
}

// Unwrap makes errors.Is(err, ErrInvalidRequest) work.
func (e *InvalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

// UnknownCoilStateError is a decode failure: a coil value field held
// something other than the two canonical wire patterns.
type UnknownCoilStateError struct {
	Value uint16
}

func (e *UnknownCoilStateError) Error() string {
	return fmt.Sprintf("unknown coil state 0x%04X (expected 0xFF00 or 0x0000)", e.Value)
}

// WriteMismatchError is a decode failure on a single-item write: the device
// echo did not match what was written. The values are the raw wire words.
type WriteMismatchError struct {
	Index  uint16
	Sent   uint16
	Echoed uint16
}

func (e *WriteMismatchError) Error() string {
	return fmt.Sprintf("write echo mismatch at address %d: sent 0x%04X, device echoed 0x%04X", e.Index, e.Sent, e.Echoed)
}

// ExceptionCode is a Modbus exception code carried in an exception response.
type ExceptionCode uint8

// Standard exception codes.
const (
	ExceptionIllegalFunction    ExceptionCode = 0x01
	ExceptionIllegalDataAddress ExceptionCode = 0x02
	ExceptionIllegalDataValue   ExceptionCode = 0x03
	ExceptionServerDeviceFail   ExceptionCode = 0x04
	ExceptionAcknowledge        ExceptionCode = 0x05
	ExceptionServerDeviceBusy   ExceptionCode = 0x06
	ExceptionGatewayPathUnavail ExceptionCode = 0x0A
	ExceptionGatewayTargetFail  ExceptionCode = 0x0B
)

// String returns the standard name of the exception code.
func (c ExceptionCode) String() string {
	switch c {
	case ExceptionIllegalFunction:
		return "ILLEGAL FUNCTION"
	case ExceptionIllegalDataAddress:
		return "ILLEGAL DATA ADDRESS"
	case ExceptionIllegalDataValue:
		return "ILLEGAL DATA VALUE"
	case ExceptionServerDeviceFail:
		return "SERVER DEVICE FAILURE"
	case ExceptionAcknowledge:
		return "ACKNOWLEDGE"
	case ExceptionServerDeviceBusy:
		return "SERVER DEVICE BUSY"
	case ExceptionGatewayPathUnavail:
		return "GATEWAY PATH UNAVAILABLE"
	case ExceptionGatewayTargetFail:
		return "GATEWAY TARGET DEVICE FAILED TO RESPOND"
	default:
		return fmt.Sprintf("UNKNOWN (0x%02X)", uint8(c))
	}
}

// ExceptionError is an exception response reported by the device.
type ExceptionError struct {
	Function FunctionCode
	Code     ExceptionCode
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus exception on function 0x%02X: %s", uint8(e.Function), e.Code)
}

// FrameError is a malformed protocol data unit or frame.
type FrameError struct {
	Detail string
}

func (e *FrameError) Error() string {
	return "malformed modbus frame: " + e.Detail
}

func frameErrorf(format string, args ...any) error {
	return &FrameError{Detail: fmt.Sprintf(format, args...)}
}
