package modbus

import "encoding/binary"

// FunctionCode is a Modbus public function code.
type FunctionCode uint8

// Function codes supported by this client.
const (
	FuncReadCoils            FunctionCode = 0x01
	FuncReadDiscreteInputs   FunctionCode = 0x02
	FuncReadHoldingRegisters FunctionCode = 0x03
	FuncReadInputRegisters   FunctionCode = 0x04
	FuncWriteSingleCoil      FunctionCode = 0x05
	FuncWriteSingleRegister  FunctionCode = 0x06
)

// exceptionBit is set on the function code of an exception response.
const exceptionBit = 0x80

// maxPDUSize is the largest protocol data unit Modbus allows.
const maxPDUSize = 253

// encodeReadRequest builds the 5-byte PDU shared by all four read functions:
// function code, start address, item count.
func encodeReadRequest(fc FunctionCode, r AddressRange) []byte {
	pdu := make([]byte, 5)
	pdu[0] = byte(fc)
	binary.BigEndian.PutUint16(pdu[1:3], r.Start)
	binary.BigEndian.PutUint16(pdu[3:5], r.Count)
	return pdu
}

// encodeWriteSingleRequest builds the 5-byte PDU for the two single-item
// write functions: function code, output address, output value.
func encodeWriteSingleRequest(fc FunctionCode, index, value uint16) []byte {
	pdu := make([]byte, 5)
	pdu[0] = byte(fc)
	binary.BigEndian.PutUint16(pdu[1:3], index)
	binary.BigEndian.PutUint16(pdu[3:5], value)
	return pdu
}

// checkResponseFunction validates the function-code byte of a response PDU,
// turning exception responses into *ExceptionError.
func checkResponseFunction(fc FunctionCode, pdu []byte) error {
	if len(pdu) == 0 {
		return frameErrorf("empty response PDU")
	}
	if pdu[0] == byte(fc)|exceptionBit {
		if len(pdu) < 2 {
			return frameErrorf("exception response for function 0x%02X is missing its code", uint8(fc))
		}
		return &ExceptionError{Function: fc, Code: ExceptionCode(pdu[1])}
	}
	if pdu[0] != byte(fc) {
		return frameErrorf("response function 0x%02X does not match request function 0x%02X", pdu[0], uint8(fc))
	}
	return nil
}

// decodeBitsResponse parses a read-coils / read-discrete-inputs response
// into one Indexed[bool] per requested address, ascending. Bits are packed
// LSB first within each byte.
func decodeBitsResponse(fc FunctionCode, r AddressRange, pdu []byte) ([]Indexed[bool], error) {
	if err := checkResponseFunction(fc, pdu); err != nil {
		return nil, err
	}
	if len(pdu) < 2 {
		return nil, frameErrorf("response for function 0x%02X is missing its byte count", uint8(fc))
	}

	expected := int(r.Count+7) / 8
	byteCount := int(pdu[1])
	data := pdu[2:]
	if byteCount != expected {
		return nil, frameErrorf("bit response byte count %d, expected %d for %d bits", byteCount, expected, r.Count)
	}
	if len(data) != byteCount {
		return nil, frameErrorf("bit response carries %d data bytes, header says %d", len(data), byteCount)
	}

	values := make([]Indexed[bool], r.Count)
	for i := range values {
		bit := data[i/8]&(1<<(i%8)) != 0
		values[i] = Indexed[bool]{Index: r.Start + uint16(i), Value: bit}
	}
	return values, nil
}

// decodeRegistersResponse parses a read-holding / read-input registers
// response into one Indexed[RegisterValue] per requested address, ascending.
func decodeRegistersResponse(fc FunctionCode, r AddressRange, pdu []byte) ([]Indexed[RegisterValue], error) {
	if err := checkResponseFunction(fc, pdu); err != nil {
		return nil, err
	}
	if len(pdu) < 2 {
		return nil, frameErrorf("response for function 0x%02X is missing its byte count", uint8(fc))
	}

	expected := int(r.Count) * 2
	byteCount := int(pdu[1])
	data := pdu[2:]
	if byteCount != expected {
		return nil, frameErrorf("register response byte count %d, expected %d for %d registers", byteCount, expected, r.Count)
	}
	if len(data) != byteCount {
		return nil, frameErrorf("register response carries %d data bytes, header says %d", len(data), byteCount)
	}

	values := make([]Indexed[RegisterValue], r.Count)
	for i := range values {
		word := binary.BigEndian.Uint16(data[i*2:])
		values[i] = Indexed[RegisterValue]{Index: r.Start + uint16(i), Value: RegisterValue(word)}
	}
	return values, nil
}

// decodeWriteSingleResponse parses the echo of a single-item write. The
// device must echo exactly what was sent; anything else is an error, never a
// silently substituted value.
func decodeWriteSingleResponse(fc FunctionCode, sentIndex, sentValue uint16, pdu []byte) error {
	if err := checkResponseFunction(fc, pdu); err != nil {
		return err
	}
	if len(pdu) != 5 {
		return frameErrorf("write echo for function 0x%02X is %d bytes, expected 5", uint8(fc), len(pdu))
	}

	echoIndex := binary.BigEndian.Uint16(pdu[1:3])
	echoValue := binary.BigEndian.Uint16(pdu[3:5])
	if echoIndex != sentIndex || echoValue != sentValue {
		return &WriteMismatchError{Index: sentIndex, Sent: sentValue, Echoed: echoValue}
	}
	return nil
}
