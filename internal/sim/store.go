package sim

import "sync"

// Default table sizes when the config leaves them zero.
const defaultTableSize = 10000

// DataStore holds the four Modbus data tables. All accessors are safe for
// concurrent use; each read or write of a span is atomic with respect to
// other accessors.
type DataStore struct {
	mu             sync.RWMutex
	coils          []bool
	discreteInputs []bool
	holding        []uint16
	input          []uint16
}

// NewDataStore creates a store with the given table sizes. A size of zero
// selects the default.
func NewDataStore(coils, discreteInputs, holding, input int) *DataStore {
	if coils <= 0 {
		coils = defaultTableSize
	}
	if discreteInputs <= 0 {
		discreteInputs = defaultTableSize
	}
	if holding <= 0 {
		holding = defaultTableSize
	}
	if input <= 0 {
		input = defaultTableSize
	}
	return &DataStore{
		coils:          make([]bool, coils),
		discreteInputs: make([]bool, discreteInputs),
		holding:        make([]uint16, holding),
		input:          make([]uint16, input),
	}
}

// inBounds reports whether [start, start+count) fits in a table of size n.
func inBounds(start, count uint16, n int) bool {
	return int(start)+int(count) <= n
}

// ReadCoils returns a copy of the coil span, or false if out of bounds.
func (s *DataStore) ReadCoils(start, count uint16) ([]bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !inBounds(start, count, len(s.coils)) {
		return nil, false
	}
	out := make([]bool, count)
	copy(out, s.coils[start:int(start)+int(count)])
	return out, true
}

// ReadDiscreteInputs returns a copy of the discrete-input span.
func (s *DataStore) ReadDiscreteInputs(start, count uint16) ([]bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !inBounds(start, count, len(s.discreteInputs)) {
		return nil, false
	}
	out := make([]bool, count)
	copy(out, s.discreteInputs[start:int(start)+int(count)])
	return out, true
}

// ReadHoldingRegisters returns a copy of the holding-register span.
func (s *DataStore) ReadHoldingRegisters(start, count uint16) ([]uint16, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !inBounds(start, count, len(s.holding)) {
		return nil, false
	}
	out := make([]uint16, count)
	copy(out, s.holding[start:int(start)+int(count)])
	return out, true
}

// ReadInputRegisters returns a copy of the input-register span.
func (s *DataStore) ReadInputRegisters(start, count uint16) ([]uint16, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !inBounds(start, count, len(s.input)) {
		return nil, false
	}
	out := make([]uint16, count)
	copy(out, s.input[start:int(start)+int(count)])
	return out, true
}

// WriteCoil sets one coil, reporting false if out of bounds.
func (s *DataStore) WriteCoil(address uint16, value bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(address) >= len(s.coils) {
		return false
	}
	s.coils[address] = value
	return true
}

// WriteHoldingRegister sets one holding register.
func (s *DataStore) WriteHoldingRegister(address uint16, value uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(address) >= len(s.holding) {
		return false
	}
	s.holding[address] = value
	return true
}

// SetDiscreteInput seeds one discrete input (no Modbus function writes
// these; tests and simulations do).
func (s *DataStore) SetDiscreteInput(address uint16, value bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(address) >= len(s.discreteInputs) {
		return false
	}
	s.discreteInputs[address] = value
	return true
}

// SetInputRegister seeds one input register.
func (s *DataStore) SetInputRegister(address uint16, value uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(address) >= len(s.input) {
		return false
	}
	s.input[address] = value
	return true
}
