package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
)

// MockBarFetcher serves bars from memory. Unknown symbols yield
// backtest.ErrDataUnavailable; symbols registered with SetError fail with that error.
type MockBarFetcher struct {
	mu      sync.RWMutex
	bars    map[string][]backtest.Bar
	errs    map[string]error
	panics  map[string]bool
	queries []universe.BarQuery
}

// NewMockBarFetcher creates a new mock bar fetcher
func NewMockBarFetcher() *MockBarFetcher {
	return &MockBarFetcher{
		bars:   make(map[string][]backtest.Bar),
		errs:   make(map[string]error),
		panics: make(map[string]bool),
	}
}

// SetBars sets the bars returned for symbol
func (m *MockBarFetcher) SetBars(symbol string, bars []backtest.Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[symbol] = bars
}

// SetError makes every fetch of symbol fail with err
func (m *MockBarFetcher) SetError(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
}

// SetPanic makes every fetch of symbol panic
func (m *MockBarFetcher) SetPanic(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics[symbol] = true
}

// Queries returns every query received, in call order
func (m *MockBarFetcher) Queries() []universe.BarQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]universe.BarQuery(nil), m.queries...)
}

// GetDailyBars implements the bar fetcher contract
func (m *MockBarFetcher) GetDailyBars(ctx context.Context, symbol string, q universe.BarQuery) ([]backtest.Bar, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	bars, ok := m.bars[symbol]
	err := m.errs[symbol]
	shouldPanic := m.panics[symbol]
	m.mu.Unlock()

	if shouldPanic {
		panic(fmt.Sprintf("mock panic for %s", symbol))
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", backtest.ErrDataUnavailable, symbol)
	}
	return append([]backtest.Bar(nil), bars...), nil
}

// MockSymbolResolver returns a fixed symbol list per market/asset class
type MockSymbolResolver struct {
	mu      sync.RWMutex
	symbols map[string][]string
	err     error
}

// NewMockSymbolResolver creates a new mock symbol resolver
func NewMockSymbolResolver() *MockSymbolResolver {
	return &MockSymbolResolver{symbols: make(map[string][]string)}
}

// SetSymbols sets the symbols returned for a market and asset class
func (m *MockSymbolResolver) SetSymbols(market, assetClass string, symbols []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[market+"/"+assetClass] = symbols
}

// SetError sets the error to return
func (m *MockSymbolResolver) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetSymbols implements the symbol resolver contract
func (m *MockSymbolResolver) GetSymbols(ctx context.Context, market, assetClass string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.symbols[market+"/"+assetClass], nil
}

// MockRunStore keeps saved runs in memory
type MockRunStore struct {
	mu   sync.RWMutex
	runs map[string]*results.Run
	err  error
}

// NewMockRunStore creates a new mock run store
func NewMockRunStore() *MockRunStore {
	return &MockRunStore{runs: make(map[string]*results.Run)}
}

// SetError sets the error SaveRun returns
func (m *MockRunStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SaveRun implements the run store contract
func (m *MockRunStore) SaveRun(ctx context.Context, run *results.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.runs[run.ID] = run
	return nil
}

// GetRun returns a saved run or nil
func (m *MockRunStore) GetRun(id string) *results.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs[id]
}

// Count returns the number of saved runs
func (m *MockRunStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// MockEventEmitter records emitted events
type MockEventEmitter struct {
	mu     sync.Mutex
	events []events.EventData
}

// NewMockEventEmitter creates a new mock event emitter
func NewMockEventEmitter() *MockEventEmitter {
	return &MockEventEmitter{}
}

// EmitTyped implements the event emitter contract
func (m *MockEventEmitter) EmitTyped(module string, data events.EventData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
}

// Events returns the recorded events of type t, in emission order
func (m *MockEventEmitter) Events(t events.EventType) []events.EventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.EventData
	for _, e := range m.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
