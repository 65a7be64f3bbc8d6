package scoring

import "LeadPull/internal/domain/models"

// Whale-activity ratio bounds for the aggregated order book.
const (
	whaleBuyRatio   = 1.5
	whaleShortRatio = 0.67
)

// Order-book activity labels.
const (
	WhaleNeutral  = "Neutral"
	WhaleBuying   = "Whale Buying"
	WhaleShorting = "Whale Shorting"
)

// OrderBookWhale scores lopsided aggregate book liquidity. A bid/ask
// volume ratio above 1.5 signals whale buying, below 0.67 whale shorting.
// A zero ask volume degrades to a fail.
func OrderBookWhale(bidVolume, askVolume, points float64) models.MetricResult {
	var (
		awarded float64
		met     bool
		ratio   float64
	)
	activity := WhaleNeutral

	if askVolume > 0 {
		ratio = bidVolume / askVolume
		switch {
		case ratio > whaleBuyRatio:
			met = true
			awarded = points
			activity = WhaleBuying
		case ratio < whaleShortRatio:
			met = true
			awarded = points
			activity = WhaleShorting
		}
	}

	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"bid_vol":           bidVolume,
			"ask_vol":           askVolume,
			"ratio":             round(ratio, 4),
			"detected_activity": activity,
		},
	}
}
