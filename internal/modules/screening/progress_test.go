package screening

import (
	"sync"
	"testing"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	testingpkg "github.com/igorcrp/lova-mia-sub000/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTracker_ClampsAndNeverDecreases(t *testing.T) {
	var got []float64
	emitter := testingpkg.NewMockEventEmitter()
	tracker := NewProgressTracker("run", 4, func(p float64) { got = append(got, p) }, emitter)

	tracker.Report(-5)
	tracker.Report(30)
	tracker.Report(20)
	tracker.Report(30)
	tracker.Report(250)
	tracker.Report(100)

	assert.Equal(t, []float64{0, 30, 100}, got)
	assert.Equal(t, 100.0, tracker.Percent())

	emitted := emitter.Events(events.ScreeningProgress)
	require.Len(t, emitted, 3)
	assert.Equal(t, "run", emitted[2].(*events.ScreeningProgressData).RunID)
}

func TestProgressTracker_AdvanceConcurrently(t *testing.T) {
	var mu sync.Mutex
	var got []float64
	tracker := NewProgressTracker("run", 50, func(p float64) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Advance(1)
		}()
	}
	wg.Wait()

	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
	}
	assert.Equal(t, 100.0, got[len(got)-1])
}

func TestProgressTracker_EmptyTotal(t *testing.T) {
	var got []float64
	tracker := NewProgressTracker("run", 0, func(p float64) { got = append(got, p) }, nil)
	tracker.Advance(0)
	assert.Equal(t, []float64{100}, got)
}
