package scoring

import "LeadPull/internal/domain/models"

// volSpikeRatio is the minimum current/average volume ratio; the
// comparison is strict.
const volSpikeRatio = 1.5

// VolSpike scores a sudden-volume ratio: current interval volume over the
// historical average, passing when strictly above 1.5. A zero average
// degrades to a fail.
func VolSpike(current, average, points float64) models.MetricResult {
	var (
		awarded float64
		met     bool
		ratio   float64
	)
	if average > 0 {
		ratio = current / average
		if ratio > volSpikeRatio {
			met = true
			awarded = points
		}
	}

	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"current_volume": current,
			"average_volume": average,
			"spike_ratio":    round(ratio, 4),
		},
	}
}
