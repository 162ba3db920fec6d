package screening

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunBatchPreservesOrder(t *testing.T) {
	pool := NewWorkerPool(3)
	symbols := []string{"A", "B", "C", "D", "E", "F", "G"}

	outcomes := pool.RunBatch(context.Background(), symbols, func(ctx context.Context, symbol string) (*backtest.AnalysisResult, error) {
		// Later symbols finish first.
		time.Sleep(time.Duration(len(symbols)-int(symbol[0]-'A')) * time.Millisecond)
		return &backtest.AnalysisResult{AssetCode: symbol}, nil
	})

	require.Len(t, outcomes, len(symbols))
	for i, out := range outcomes {
		assert.Equal(t, symbols[i], out.Symbol)
		require.NoError(t, out.Err)
		assert.Equal(t, symbols[i], out.Result.AssetCode)
	}
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)
	var running, peak int32

	pool.RunBatch(context.Background(), []string{"A", "B", "C", "D", "E"}, func(ctx context.Context, symbol string) (*backtest.AnalysisResult, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return &backtest.AnalysisResult{AssetCode: symbol}, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestWorkerPool_IsolatesFailures(t *testing.T) {
	pool := NewWorkerPool(4)
	boom := errors.New("boom")

	outcomes := pool.RunBatch(context.Background(), []string{"OK", "ERR", "PANIC", "NIL"}, func(ctx context.Context, symbol string) (*backtest.AnalysisResult, error) {
		switch symbol {
		case "ERR":
			return nil, boom
		case "PANIC":
			panic("kaboom")
		case "NIL":
			return nil, nil
		}
		return &backtest.AnalysisResult{AssetCode: symbol}, nil
	})

	require.Len(t, outcomes, 4)
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, boom)
	assert.ErrorContains(t, outcomes[2].Err, "kaboom")
	assert.Nil(t, outcomes[2].Result)
	assert.Error(t, outcomes[3].Err)
}

func TestWorkerPool_Defaults(t *testing.T) {
	assert.Equal(t, DefaultBatchSize, NewWorkerPool(0).Size())
	assert.Empty(t, NewWorkerPool(1).RunBatch(context.Background(), nil, nil))
}
