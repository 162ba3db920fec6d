package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		sample float64
		pop    float64
	}{
		{"empty", nil, 0, 0},
		{"single value", []float64{400}, 0, 0},
		{"two values", []float64{-198, 400}, 422.8498, 299.0},
		{"constant", []float64{5, 5, 5, 5}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.sample, StdDev(tt.data), 1e-3)
			assert.InDelta(t, tt.pop, PopStdDev(tt.data), 1e-9)
		})
	}
}

func TestDownsideDeviation(t *testing.T) {
	t.Run("no values below target", func(t *testing.T) {
		assert.Nil(t, DownsideDeviation([]float64{1, 2, 0}, 0))
	})

	t.Run("only negatives contribute", func(t *testing.T) {
		dev := DownsideDeviation([]float64{100, -30, -40, 50}, 0)
		require.NotNil(t, dev)
		// sqrt((900 + 1600) / 2)
		assert.InDelta(t, math.Sqrt(1250), *dev, 1e-9)
	})
}

func TestRatioOrZero(t *testing.T) {
	assert.Equal(t, 0.0, RatioOrZero(10, 0))
	assert.Equal(t, 0.0, RatioOrZero(10, math.NaN()))
	assert.Equal(t, 0.0, RatioOrZero(10, math.Inf(1)))
	assert.InDelta(t, 2.5, RatioOrZero(10, 4), 1e-12)
}
