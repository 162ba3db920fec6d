package screening

import (
	"math"
	"sync"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
)

// ProgressFunc receives a completion percentage in [0, 100].
type ProgressFunc func(percent float64)

// ProgressTracker turns completed-task counts into a percentage that never
// decreases and never leaves [0, 100]. It is safe for concurrent use.
type ProgressTracker struct {
	mu        sync.Mutex
	runID     string
	total     int
	completed int
	last      float64
	reported  bool
	callback  ProgressFunc
	emitter   EventEmitter
}

// NewProgressTracker creates a tracker for total units of work. callback and
// emitter may be nil.
func NewProgressTracker(runID string, total int, callback ProgressFunc, emitter EventEmitter) *ProgressTracker {
	return &ProgressTracker{
		runID:    runID,
		total:    total,
		callback: callback,
		emitter:  emitter,
	}
}

// Advance records n more completed units and reports the new percentage.
func (p *ProgressTracker) Advance(n int) {
	p.mu.Lock()
	p.completed += n
	percent := 100.0
	if p.total > 0 {
		percent = float64(p.completed) / float64(p.total) * 100
	}
	p.mu.Unlock()

	p.Report(percent)
}

// Report publishes percent unless it does not exceed what was already reported.
func (p *ProgressTracker) Report(percent float64) {
	if math.IsNaN(percent) {
		return
	}
	percent = math.Max(0, math.Min(100, percent))

	p.mu.Lock()
	if p.reported && percent <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = percent
	p.reported = true
	completed, total := p.completed, p.total
	callback, emitter := p.callback, p.emitter
	// Deliver under the lock so observers see values in order.
	defer p.mu.Unlock()

	if callback != nil {
		callback(percent)
	}
	if emitter != nil {
		emitter.EmitTyped("screening", &events.ScreeningProgressData{
			RunID:     p.runID,
			Percent:   percent,
			Completed: completed,
			Total:     total,
		})
	}
}

// Percent returns the last reported percentage.
func (p *ProgressTracker) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
