package modbus_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/fossabot/rodbus/internal/sim"
	"github.com/fossabot/rodbus/modbus"
)

// startSimulator binds a simulator on an ephemeral port and returns a
// session talking to it.
func startSimulator(t *testing.T) (*sim.Server, modbus.Session, *modbus.Channel) {
	t.Helper()

	server, err := sim.New(&sim.Config{Port: 0, LogLevel: "error"})
	if err != nil {
		t.Fatalf("failed to create simulator: %v", err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("failed to bind simulator: %v", err)
	}
	go server.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	channel, err := modbus.NewChannel("tcp://" + server.Addr().String())
	if err != nil {
		t.Fatalf("failed to open channel: %v", err)
	}
	t.Cleanup(func() { channel.Close() })

	return server, channel.Session(modbus.UnitID(1), time.Second), channel
}

func TestReadAgainstSimulator(t *testing.T) {
	server, session, _ := startSimulator(t)

	store := server.Store()
	store.WriteCoil(5, true)
	store.WriteCoil(7, true)
	store.SetDiscreteInput(3, true)
	store.WriteHoldingRegister(10, 0xBEEF)
	store.SetInputRegister(20, 12345)

	ctx := context.Background()

	coils, err := session.ReadCoils(ctx, modbus.AddressRange{Start: 4, Count: 4})
	if err != nil {
		t.Fatalf("ReadCoils() error = %v", err)
	}
	wantCoils := []bool{false, true, false, true}
	for i, v := range coils {
		if v.Value != wantCoils[i] {
			t.Errorf("coil %d = %v, want %v", v.Index, v.Value, wantCoils[i])
		}
	}

	inputs, err := session.ReadDiscreteInputs(ctx, modbus.AddressRange{Start: 3, Count: 1})
	if err != nil {
		t.Fatalf("ReadDiscreteInputs() error = %v", err)
	}
	if !inputs[0].Value {
		t.Error("discrete input 3 should be set")
	}

	holding, err := session.ReadHoldingRegisters(ctx, modbus.AddressRange{Start: 10, Count: 1})
	if err != nil {
		t.Fatalf("ReadHoldingRegisters() error = %v", err)
	}
	if holding[0].Value.Uint16() != 0xBEEF {
		t.Errorf("holding register 10 = 0x%04X, want 0xBEEF", holding[0].Value.Uint16())
	}

	input, err := session.ReadInputRegisters(ctx, modbus.AddressRange{Start: 20, Count: 1})
	if err != nil {
		t.Fatalf("ReadInputRegisters() error = %v", err)
	}
	if input[0].Value.Uint16() != 12345 {
		t.Errorf("input register 20 = %d, want 12345", input[0].Value.Uint16())
	}
}

func TestWriteAgainstSimulator(t *testing.T) {
	server, session, _ := startSimulator(t)
	ctx := context.Background()

	echo, err := session.WriteSingleCoil(ctx, modbus.Indexed[modbus.CoilState]{Index: 42, Value: modbus.CoilOn})
	if err != nil {
		t.Fatalf("WriteSingleCoil() error = %v", err)
	}
	if echo.Index != 42 || !echo.Value.IsOn() {
		t.Errorf("echo = %v, want (42, ON)", echo)
	}
	if values, ok := server.Store().ReadCoils(42, 1); !ok || !values[0] {
		t.Error("coil 42 should be set in the simulator store")
	}

	regEcho, err := session.WriteSingleRegister(ctx, modbus.Indexed[modbus.RegisterValue]{Index: 100, Value: 1500})
	if err != nil {
		t.Fatalf("WriteSingleRegister() error = %v", err)
	}
	if regEcho.Index != 100 || regEcho.Value.Uint16() != 1500 {
		t.Errorf("echo = %v, want (100, 1500)", regEcho)
	}
	if values, ok := server.Store().ReadHoldingRegisters(100, 1); !ok || values[0] != 1500 {
		t.Error("holding register 100 should be 1500 in the simulator store")
	}

	// Writing a coil back off round-trips too.
	if _, err := session.WriteSingleCoil(ctx, modbus.Indexed[modbus.CoilState]{Index: 42, Value: modbus.CoilOff}); err != nil {
		t.Fatalf("WriteSingleCoil(off) error = %v", err)
	}
	if values, ok := server.Store().ReadCoils(42, 1); !ok || values[0] {
		t.Error("coil 42 should be clear after writing it off")
	}
}

func TestSimulatorRejectsOutOfRangeAddress(t *testing.T) {
	_, session, _ := startSimulator(t)

	// The default tables are smaller than the address space; reading past
	// the end must come back as an ILLEGAL DATA ADDRESS exception.
	_, err := session.ReadHoldingRegisters(context.Background(), modbus.AddressRange{Start: 65000, Count: 10})
	var exc *modbus.ExceptionError
	if !errors.As(err, &exc) {
		t.Fatalf("error should be *ExceptionError, got %v", err)
	}
	if exc.Code != modbus.ExceptionIllegalDataAddress {
		t.Errorf("exception code = %v, want ILLEGAL DATA ADDRESS", exc.Code)
	}
}

func TestConcurrentSessionsAgainstSimulator(t *testing.T) {
	server, session, _ := startSimulator(t)
	for i := uint16(0); i < 8; i++ {
		server.Store().WriteHoldingRegister(i, i*10)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := session.Clone()
			values, err := s.ReadHoldingRegisters(context.Background(), modbus.AddressRange{Start: 0, Count: 8})
			if err != nil {
				errs <- err
				return
			}
			for j, v := range values {
				if v.Value.Uint16() != uint16(j)*10 {
					errs <- errors.New("unexpected register value")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}
}

func TestChannelCloseFailsPendingCalls(t *testing.T) {
	_, session, channel := startSimulator(t)

	// Prove a call works, then close and prove the session reports
	// shutdown instead of hanging.
	if _, err := session.ReadCoils(context.Background(), modbus.AddressRange{Start: 0, Count: 1}); err != nil {
		t.Fatalf("ReadCoils() before close: %v", err)
	}

	channel.Close()
	// Close is asynchronous; the transport task publishes the shutdown
	// after draining. Poll briefly for the state to settle.
	deadline := time.Now().Add(time.Second)
	for {
		_, err := session.ReadCoils(context.Background(), modbus.AddressRange{Start: 0, Count: 1})
		if errors.Is(err, modbus.ErrShutdown) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("call after Close() = %v, want ErrShutdown", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestChannelReconnectsAfterSimulatorRestart(t *testing.T) {
	server, err := sim.New(&sim.Config{Port: 0, LogLevel: "error"})
	if err != nil {
		t.Fatalf("failed to create simulator: %v", err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("failed to bind simulator: %v", err)
	}
	go server.Serve()
	port := server.Addr().(*net.TCPAddr).Port
	addr := server.Addr().String()

	channel, err := modbus.NewChannel("tcp://"+addr, modbus.WithReconnectDelay(10*time.Millisecond))
	if err != nil {
		t.Fatalf("failed to open channel: %v", err)
	}
	defer channel.Close()
	session := channel.Session(1, 500*time.Millisecond)

	if _, err := session.ReadCoils(context.Background(), modbus.AddressRange{Start: 0, Count: 1}); err != nil {
		t.Fatalf("initial read: %v", err)
	}

	// Kill the simulator out from under the channel. Calls fail while it
	// is down but must never hang.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	server.Shutdown(ctx)
	cancel()
	if _, err := session.ReadCoils(context.Background(), modbus.AddressRange{Start: 0, Count: 1}); err == nil {
		t.Fatal("read against a dead simulator should fail")
	}

	// Restart on the same port; the channel redials lazily on the next
	// request and calls succeed again.
	restarted, err := sim.New(&sim.Config{Port: port, LogLevel: "error"})
	if err != nil {
		t.Fatalf("failed to recreate simulator: %v", err)
	}
	if err := restarted.Listen(); err != nil {
		t.Fatalf("failed to rebind simulator on port %d: %v", port, err)
	}
	go restarted.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		restarted.Shutdown(ctx)
	})

	deadline := time.Now().Add(3 * time.Second)
	for {
		_, err := session.ReadCoils(context.Background(), modbus.AddressRange{Start: 0, Count: 1})
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("channel never recovered after restart: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
