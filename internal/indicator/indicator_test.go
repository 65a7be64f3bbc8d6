package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSITooShort(t *testing.T) {
	closes := []float64{1, 2, 3}
	_, ok := RSI(closes, 14)
	assert.False(t, ok)
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, ok := RSI(closes, 14)
	require.True(t, ok)
	assert.Equal(t, 100.0, rsi, "no losses pins RSI at 100")
}

func TestRSIBalanced(t *testing.T) {
	// alternating +1/-1 deltas: equal average gain and loss
	closes := make([]float64, 15)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 1
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	rsi, ok := RSI(closes, 14)
	require.True(t, ok)
	assert.InDelta(t, 50.0, rsi, 1e-9)
}

func TestRSIUsesOnlyTrailingWindow(t *testing.T) {
	// a large early drop outside the window must not affect the result
	closes := append([]float64{1000, 10}, make([]float64, 15)...)
	for i := 2; i < len(closes); i++ {
		closes[i] = 100 + float64(i)
	}
	rsi, ok := RSI(closes, 14)
	require.True(t, ok)
	assert.Equal(t, 100.0, rsi)
}

func TestEMATooShort(t *testing.T) {
	_, ok := EMA([]float64{1, 2, 3}, 20)
	assert.False(t, ok)
}

func TestEMAConstantSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 42
	}
	p, ok := EMA(closes, 20)
	require.True(t, ok)
	assert.Equal(t, 42.0, p.Prev)
	assert.Equal(t, 42.0, p.Last)
	assert.Zero(t, p.Slope())
}

func TestEMATracksTrend(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	p, ok := EMA(closes, 20)
	require.True(t, ok)
	assert.Positive(t, p.Slope(), "a rising series has a positive EMA slope")
	assert.Less(t, p.Last, closes[len(closes)-1], "the EMA lags the raw series")
}

func TestEMASingleValueWindowOne(t *testing.T) {
	p, ok := EMA([]float64{7}, 1)
	require.True(t, ok)
	assert.Equal(t, 7.0, p.Prev)
	assert.Equal(t, 7.0, p.Last)
}

func TestMean(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestTailSum(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.Equal(t, 7.0, TailSum(xs, 2))
	assert.Equal(t, 10.0, TailSum(xs, 100), "oversized window sums everything")
	assert.Zero(t, TailSum(nil, 5))
}
