// Package modbus implements a Modbus master (client) session layer.
//
// A Channel owns the connection to a single Modbus endpoint and runs one
// background transport task that serializes requests onto the wire. Sessions
// are cheap handles onto a Channel: each read or write call is validated
// locally, queued as a transaction, and completed by the transport task
// through a single-use completion signal. Any number of goroutines may issue
// calls through copies of the same Session concurrently.
//
// Basic usage:
//
//	ch, err := modbus.NewChannel("tcp://10.0.0.7:502")
//	if err != nil {
//		// ...
//	}
//	defer ch.Close()
//
//	session := ch.Session(modbus.UnitID(1), time.Second)
//	values, err := session.ReadHoldingRegisters(ctx, modbus.AddressRange{Start: 0, Count: 10})
//
// Supported function codes: Read Coils (0x01), Read Discrete Inputs (0x02),
// Read Holding Registers (0x03), Read Input Registers (0x04), Write Single
// Coil (0x05), Write Single Register (0x06).
//
// # Endpoints
//
// Channel endpoints are URLs. "tcp://host:port" (or a bare "host:port",
// defaulting to port 502) speaks Modbus TCP directly. "ws://" and "wss://"
// endpoints speak to a gateway that carries one MBAP frame per binary
// WebSocket message.
//
// # Errors
//
// Requests that fail local validation never reach the wire and return an
// *InvalidRequestError. Once the channel is closed, every pending and future
// call fails with ErrShutdown rather than blocking. Device exception
// responses surface as *ExceptionError; everything else the transport task
// reports is forwarded to the caller unchanged.
package modbus
