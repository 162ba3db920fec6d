package screening

import (
	"context"
	"fmt"
	"sync"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
)

// DefaultBatchSize is the number of symbols simulated concurrently.
const DefaultBatchSize = 10

// Task simulates one symbol.
type Task func(ctx context.Context, symbol string) (*backtest.AnalysisResult, error)

// Outcome is the result of one task. Exactly one of Result and Err is set.
type Outcome struct {
	Symbol string
	Result *backtest.AnalysisResult
	Err    error
}

// WorkerPool runs tasks over a batch of symbols with bounded concurrency
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultBatchSize
	}
	return &WorkerPool{
		numWorkers: numWorkers,
	}
}

// Size returns the number of workers
func (wp *WorkerPool) Size() int {
	return wp.numWorkers
}

// RunBatch runs task for every symbol and returns outcomes in input order.
// A failing or panicking task becomes an Outcome with Err set; it never
// affects the other tasks.
func (wp *WorkerPool) RunBatch(ctx context.Context, symbols []string, task Task) []Outcome {
	numSymbols := len(symbols)
	if numSymbols == 0 {
		return []Outcome{}
	}

	jobs := make(chan jobItem, numSymbols)
	outcomes := make(chan resultItem, numSymbols)

	var wg sync.WaitGroup
	numActualWorkers := wp.numWorkers
	if numSymbols < numActualWorkers {
		numActualWorkers = numSymbols
	}

	for i := 0; i < numActualWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, jobs, outcomes, task)
		}()
	}

	for idx, symbol := range symbols {
		jobs <- jobItem{index: idx, symbol: symbol}
	}
	close(jobs)

	wg.Wait()
	close(outcomes)

	collected := make([]Outcome, numSymbols)
	for item := range outcomes {
		collected[item.index] = item.outcome
	}
	return collected
}

type jobItem struct {
	symbol string
	index  int
}

type resultItem struct {
	outcome Outcome
	index   int
}

func worker(ctx context.Context, jobs <-chan jobItem, outcomes chan<- resultItem, task Task) {
	for job := range jobs {
		outcomes <- resultItem{
			index:   job.index,
			outcome: runTask(ctx, job.symbol, task),
		}
	}
}

func runTask(ctx context.Context, symbol string, task Task) (out Outcome) {
	out.Symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = fmt.Errorf("simulation panicked: %v", r)
		}
	}()

	res, err := task(ctx, symbol)
	if err == nil && res == nil {
		err = fmt.Errorf("no result")
	}
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res
	return out
}
