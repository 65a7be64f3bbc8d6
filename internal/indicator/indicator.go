// Package indicator provides pure technical transforms over a candle-close
// sequence. Nothing here holds state: every function is fully determined by
// the slice it is given, and callers substitute the documented neutral
// defaults when a series is too short.
package indicator

import "LeadPull/internal/domain/models"

// NeutralRSI is the fallback when fewer than period+1 closes exist.
const NeutralRSI = 50.0

// Closes extracts the close series from a candle history.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// RSI computes the Relative Strength Index from the simple average gain and
// loss over the final `period` deltas of the close series. The boolean
// result is false
// when the series is too short to define the index; the caller then uses
// NeutralRSI.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// EMA computes an exponential moving average over the full close series
// with smoothing factor 2/(window+1), seeded from the first close, and
// returns the last two values for slope computation. The boolean result is
// false below `window` points; the caller substitutes two copies of the
// current price.
func EMA(closes []float64, window int) (models.EMAPair, bool) {
	if window <= 0 || len(closes) < window {
		return models.EMAPair{}, false
	}

	alpha := 2.0 / float64(window+1)
	prev := closes[0]
	last := closes[0]
	for i := 1; i < len(closes); i++ {
		prev = last
		last = closes[i]*alpha + last*(1-alpha)
	}
	if len(closes) == 1 {
		prev = last
	}
	return models.EMAPair{Prev: prev, Last: last}, true
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// TailSum sums the last n values of xs, or all of them when n exceeds the
// length.
func TailSum(xs []float64, n int) float64 {
	if n > len(xs) {
		n = len(xs)
	}
	var sum float64
	for i := len(xs) - n; i < len(xs); i++ {
		sum += xs[i]
	}
	return sum
}
