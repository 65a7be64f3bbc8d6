package scoring

import "LeadPull/internal/domain/models"

// EMASlope scores trend structure off the 20/50/200 EMA pairs.
//
// Q3 asks for any nonzero short-term bias: the 20-EMA slope must be
// nonzero. Q1 asks for the stacked order ema200 > ema50 > ema20.
func EMASlope(ema models.EMASet, ctx Context, points float64) models.MetricResult {
	var (
		awarded float64
		met     bool
	)

	slope20 := ema.EMA20.Slope()
	slope50 := ema.EMA50.Slope()
	slope200 := ema.EMA200.Slope()

	switch ctx {
	case ContextQ3:
		if slope20 != 0 {
			met = true
			awarded = points
		}
	case ContextQ1:
		if ema.Stacked() {
			met = true
			awarded = points
		}
	}

	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"slopes":          map[string]float64{"20": slope20, "50": slope50, "200": slope200},
			"stack_aligned":   ema.Stacked(),
			"context_applied": string(ctx),
		},
	}
}
