package sim

import (
	"encoding/binary"

	"github.com/fossabot/rodbus/modbus"
)

const exceptionBit = 0x80

// handlePDU services one request PDU against the store and returns the
// response PDU. Malformed PDUs yield ILLEGAL DATA VALUE; unknown function
// codes yield ILLEGAL FUNCTION.
func handlePDU(store *DataStore, pdu []byte) []byte {
	if len(pdu) == 0 {
		return nil
	}
	fc := modbus.FunctionCode(pdu[0])

	switch fc {
	case modbus.FuncReadCoils, modbus.FuncReadDiscreteInputs:
		return handleReadBits(store, fc, pdu)
	case modbus.FuncReadHoldingRegisters, modbus.FuncReadInputRegisters:
		return handleReadRegisters(store, fc, pdu)
	case modbus.FuncWriteSingleCoil:
		return handleWriteSingleCoil(store, pdu)
	case modbus.FuncWriteSingleRegister:
		return handleWriteSingleRegister(store, pdu)
	default:
		return exception(fc, modbus.ExceptionIllegalFunction)
	}
}

func exception(fc modbus.FunctionCode, code modbus.ExceptionCode) []byte {
	return []byte{byte(fc) | exceptionBit, byte(code)}
}

func handleReadBits(store *DataStore, fc modbus.FunctionCode, pdu []byte) []byte {
	if len(pdu) != 5 {
		return exception(fc, modbus.ExceptionIllegalDataValue)
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	count := binary.BigEndian.Uint16(pdu[3:5])
	if count == 0 || count > modbus.MaxReadBits {
		return exception(fc, modbus.ExceptionIllegalDataValue)
	}

	var bits []bool
	var ok bool
	if fc == modbus.FuncReadCoils {
		bits, ok = store.ReadCoils(start, count)
	} else {
		bits, ok = store.ReadDiscreteInputs(start, count)
	}
	if !ok {
		return exception(fc, modbus.ExceptionIllegalDataAddress)
	}

	byteCount := (len(bits) + 7) / 8
	resp := make([]byte, 2+byteCount)
	resp[0] = byte(fc)
	resp[1] = byte(byteCount)
	for i, bit := range bits {
		if bit {
			resp[2+i/8] |= 1 << (i % 8)
		}
	}
	return resp
}

func handleReadRegisters(store *DataStore, fc modbus.FunctionCode, pdu []byte) []byte {
	if len(pdu) != 5 {
		return exception(fc, modbus.ExceptionIllegalDataValue)
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	count := binary.BigEndian.Uint16(pdu[3:5])
	if count == 0 || count > modbus.MaxReadRegisters {
		return exception(fc, modbus.ExceptionIllegalDataValue)
	}

	var words []uint16
	var ok bool
	if fc == modbus.FuncReadHoldingRegisters {
		words, ok = store.ReadHoldingRegisters(start, count)
	} else {
		words, ok = store.ReadInputRegisters(start, count)
	}
	if !ok {
		return exception(fc, modbus.ExceptionIllegalDataAddress)
	}

	resp := make([]byte, 2+2*len(words))
	resp[0] = byte(fc)
	resp[1] = byte(2 * len(words))
	for i, word := range words {
		binary.BigEndian.PutUint16(resp[2+2*i:], word)
	}
	return resp
}

func handleWriteSingleCoil(store *DataStore, pdu []byte) []byte {
	fc := modbus.FuncWriteSingleCoil
	if len(pdu) != 5 {
		return exception(fc, modbus.ExceptionIllegalDataValue)
	}
	address := binary.BigEndian.Uint16(pdu[1:3])
	raw := binary.BigEndian.Uint16(pdu[3:5])

	state, err := modbus.CoilStateFromUint16(raw)
	if err != nil {
		return exception(fc, modbus.ExceptionIllegalDataValue)
	}
	if !store.WriteCoil(address, state.IsOn()) {
		return exception(fc, modbus.ExceptionIllegalDataAddress)
	}

	// The response echoes the request verbatim.
	resp := make([]byte, 5)
	copy(resp, pdu)
	return resp
}

func handleWriteSingleRegister(store *DataStore, pdu []byte) []byte {
	fc := modbus.FuncWriteSingleRegister
	if len(pdu) != 5 {
		return exception(fc, modbus.ExceptionIllegalDataValue)
	}
	address := binary.BigEndian.Uint16(pdu[1:3])
	value := binary.BigEndian.Uint16(pdu[3:5])

	if !store.WriteHoldingRegister(address, value) {
		return exception(fc, modbus.ExceptionIllegalDataAddress)
	}

	resp := make([]byte, 5)
	copy(resp, pdu)
	return resp
}
