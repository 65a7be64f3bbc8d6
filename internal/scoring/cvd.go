package scoring

import "LeadPull/internal/domain/models"

// cvdWindow is how many trailing CVD samples the slope check inspects:
// four 5-minute candles, i.e. the last 20 minutes.
const cvdWindow = 4

// CVD direction labels surfaced in explanation payloads and Q5 advice.
const (
	CVDNeutral = "Neutral"
	CVDBuying  = "Aggressive Buying (Positive Slope)"
	CVDSelling = "Aggressive Selling (Negative Slope)"
)

// CVDAnalysis scores aggression off the cumulative volume delta series:
// the condition is met when the last four samples are strictly monotonic,
// rising (buying aggression) or falling (selling aggression). Fewer than
// four samples is neutral.
func CVDAnalysis(series []float64, points float64) models.MetricResult {
	var (
		awarded float64
		met     bool
	)
	direction := CVDNeutral
	last4 := []float64{}

	if len(series) >= cvdWindow {
		tail := series[len(series)-cvdWindow:]
		rising, falling := true, true
		for i := 1; i < len(tail); i++ {
			if tail[i] <= tail[i-1] {
				rising = false
			}
			if tail[i] >= tail[i-1] {
				falling = false
			}
		}
		switch {
		case rising:
			met = true
			awarded = points
			direction = CVDBuying
		case falling:
			met = true
			awarded = points
			direction = CVDSelling
		}
		for _, v := range tail {
			last4 = append(last4, round(v, 2))
		}
	}

	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"cvd_last_4":  last4,
			"direction":   direction,
			"observation": "CVD trend over last 20 mins: " + direction,
		},
	}
}
