package scoring

import "LeadPull/internal/domain/models"

// RSI sentiment labels.
const (
	RSIOverbought = "Overbought"
	RSIBullish    = "Bullish"
	RSIBearish    = "Bearish"
	RSIOversold   = "Oversold"
	RSINeutral    = "Neutral"
)

// RSISentiment classifies an RSI reading.
func RSISentiment(rsi float64) string {
	switch {
	case rsi > 70:
		return RSIOverbought
	case rsi > 50:
		return RSIBullish
	case rsi >= 30:
		return RSIBearish
	case rsi < 30:
		return RSIOversold
	}
	return RSINeutral
}

// RSILogic scores RSI momentum corridors. Only Q1 and Q4 award points:
// buying targets 52-67, selling targets 33-48. The sentiment label is
// always computed for the explanation payload.
func RSILogic(rsi float64, ctx Context, points float64, dir Direction) models.MetricResult {
	var (
		awarded float64
		met     bool
	)

	if ctx == ContextQ1 || ctx == ContextQ4 {
		switch dir {
		case Buying:
			met = rsi >= 52 && rsi <= 67
		case Selling:
			met = rsi >= 33 && rsi <= 48
		}
		if met {
			awarded = points
		}
	}

	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"rsi_value":        round(rsi, 2),
			"sentiment":        RSISentiment(rsi),
			"in_momentum_zone": met,
			"target_direction": string(dir),
		},
	}
}
