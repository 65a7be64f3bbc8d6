package scoring

import "LeadPull/internal/domain/models"

// vol24hIncrease is the required growth of 24h volume over the previous
// hour's volume.
const vol24hIncrease = 0.50

// Vol24h scores 24-hour volume growth against the prior hour: passes when
// the increase is at least 50% (inclusive). A zero prior-hour volume
// degrades to a fail.
func Vol24h(current24h, prevHour, points float64) models.MetricResult {
	var (
		awarded  float64
		met      bool
		increase float64
	)
	if prevHour > 0 {
		increase = (current24h - prevHour) / prevHour
		if increase >= vol24hIncrease {
			met = true
			awarded = points
		}
	}

	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"current_24h_vol": current24h,
			"prev_hour_vol":   prevHour,
			"increase_pct":    round(increase*100, 2),
		},
	}
}
