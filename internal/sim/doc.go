// Package sim implements an in-process Modbus TCP server for development
// and testing.
//
// The simulator owns a mutable data store with the four Modbus data tables
// (coils, discrete inputs, holding registers, input registers) and serves
// the same six function codes the rodbus client issues. Requests outside the
// configured table sizes receive ILLEGAL DATA ADDRESS exceptions;
// unsupported function codes receive ILLEGAL FUNCTION.
//
// The server accepts plain TCP by default. TLS can be enabled either from
// certificate/key files or with an auto-generated self-signed certificate
// for throwaway test setups.
//
// Typical test usage:
//
//	srv, _ := sim.New(&sim.Config{Host: "127.0.0.1", Port: 0})
//	if err := srv.Listen(); err != nil { ... }
//	go srv.Serve()
//	defer srv.Shutdown(context.Background())
//
//	ch, _ := modbus.NewChannel("tcp://" + srv.Addr().String())
package sim
