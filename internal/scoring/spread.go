package scoring

import "LeadPull/internal/domain/models"

// spreadThresholdPct is the favorable bid-ask spread ceiling, percent.
const spreadThresholdPct = 0.3

// BidAskSpread scores the relative spread between the best quotes: the
// hidden cost of immediate execution. Passes when
// (ask-bid)/ask*100 < 0.3. A zero ask degrades to a fail.
func BidAskSpread(bestBid, bestAsk, points float64) models.MetricResult {
	var (
		awarded   float64
		met       bool
		spreadPct float64
	)
	if bestAsk > 0 {
		spreadPct = (bestAsk - bestBid) / bestAsk * 100
		if spreadPct < spreadThresholdPct {
			met = true
			awarded = points
		}
	}
	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"best_bid":   bestBid,
			"best_ask":   bestAsk,
			"spread_pct": round(spreadPct, 4),
			"threshold":  spreadThresholdPct,
		},
	}
}
