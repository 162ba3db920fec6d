package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEventManager() (*Manager, *Bus) {
	log := zerolog.Nop()
	bus := NewBus(log)
	return NewManager(bus, log), bus
}

func TestBus_SubscribeAndUnsubscribe(t *testing.T) {
	_, bus := setupEventManager()

	var got []string
	unsubscribe := bus.Subscribe(SymbolFailed, func(e *Event) {
		got = append(got, e.Data["symbol"].(string))
	})
	bus.Subscribe(ScreeningProgress, func(e *Event) {
		t.Fatal("wrong type delivered")
	})

	bus.Emit(SymbolFailed, "screening", map[string]interface{}{"symbol": "PETR4"})
	assert.Equal(t, 1, bus.SubscriberCount(SymbolFailed))

	unsubscribe()
	unsubscribe()
	bus.Emit(SymbolFailed, "screening", map[string]interface{}{"symbol": "VALE3"})

	assert.Equal(t, []string{"PETR4"}, got)
	assert.Equal(t, 0, bus.SubscriberCount(SymbolFailed))
}

func TestBus_PanickingHandlerIsolated(t *testing.T) {
	_, bus := setupEventManager()

	delivered := false
	bus.Subscribe(ErrorOccurred, func(e *Event) { panic("boom") })
	bus.Subscribe(ErrorOccurred, func(e *Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Emit(ErrorOccurred, "test", map[string]interface{}{"error": "x"})
	})
	assert.True(t, delivered)
}

func TestBus_ConcurrentEmit(t *testing.T) {
	_, bus := setupEventManager()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(ScreeningProgress, func(e *Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit(ScreeningProgress, "screening", map[string]interface{}{"percent": 10.0})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}

func TestManager_EmitTypedRoundTrip(t *testing.T) {
	manager, bus := setupEventManager()

	eventsChan := make(chan Event, 1)
	bus.Subscribe(ScreeningCompleted, func(e *Event) { eventsChan <- *e })

	manager.EmitTyped("screening", &ScreeningCompletedData{RunID: "run-1", Results: 8, Failed: 2, BestSymbol: "WEGE3"})

	event := <-eventsChan
	assert.Equal(t, ScreeningCompleted, event.Type)
	assert.Equal(t, "screening", event.Module)
	assert.False(t, event.Timestamp.IsZero())

	typed, ok := event.GetTypedData().(*ScreeningCompletedData)
	require.True(t, ok)
	assert.Equal(t, "run-1", typed.RunID)
	assert.Equal(t, 8, typed.Results)
	assert.Equal(t, 2, typed.Failed)
	assert.Equal(t, "WEGE3", typed.BestSymbol)
}

func TestManager_EmitError(t *testing.T) {
	manager, bus := setupEventManager()

	var got *ErrorEventData
	bus.Subscribe(ErrorOccurred, func(e *Event) {
		got, _ = e.GetTypedData().(*ErrorEventData)
	})

	manager.EmitError("reports", errors.New("upload failed"), map[string]interface{}{"run_id": "r"})

	require.NotNil(t, got)
	assert.Equal(t, "upload failed", got.Error)
	assert.Equal(t, "r", got.Context["run_id"])
}

func TestGetTypedData_Unknown(t *testing.T) {
	e := NewEvent("SOMETHING_ELSE", "x", map[string]interface{}{"a": 1})
	assert.Nil(t, e.GetTypedData())
	assert.Nil(t, (&Event{Type: ScreeningStarted}).GetTypedData())
}

func TestAllTypesHaveTypedData(t *testing.T) {
	for _, et := range AllTypes() {
		e := NewEvent(et, "test", map[string]interface{}{})
		assert.NotNil(t, e.GetTypedData(), et)
	}
}
