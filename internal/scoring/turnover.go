package scoring

import "LeadPull/internal/domain/models"

// highTurnover marks the ratio above which turnover is labelled High; for
// BTC a typical daily turnover sits between 2% and 5% of market cap.
const highTurnover = 0.03

// TurnoverRatio scores traded volume against market capitalization. Any
// measurable turnover during a lead counts as a positive efficiency sign;
// a zero market cap degrades to a fail.
func TurnoverRatio(volume, marketCap, points float64) models.MetricResult {
	var (
		awarded float64
		met     bool
		ratio   float64
	)
	if marketCap > 0 {
		ratio = volume / marketCap
		if ratio > 0 {
			met = true
			awarded = points
		}
	}

	mult := "Standard"
	if ratio > highTurnover {
		mult = "High"
	}
	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"volume":                volume,
			"market_cap":            marketCap,
			"turnover_ratio":        round(ratio, 6),
			"efficiency_multiplier": mult,
		},
	}
}
