package questionnaire

import (
	"math"

	"LeadPull/internal/domain/models"
	"LeadPull/internal/scoring"
)

// Q1 point budgets, pass threshold and the required distance from the
// nearest S/R level.
const (
	q1SRPoints       = 3.0
	q1RSIPoints      = 1.5
	q1EMAPoints      = 1.5
	q1WhalePoints    = 2.0
	q1PassThreshold  = 5.0
	q1BreachFraction = 0.05
)

// Q1 status lines.
const (
	StatusBreakthrough = "Breakthrough Confirmed"
	StatusTesting      = "Testing Resistance"
)

// EvaluateBreakthrough is the Q1 confirmation: has a support/resistance
// breakthrough actually happened? The verdict needs at least 5 points and
// the price at least 5% away from the nearest S/R level.
func EvaluateBreakthrough(s *models.Snapshot, dir scoring.Direction) *models.StageReport {
	return run(StageQ1, s.Taken, func() *models.StageReport {
		results := map[string]models.MetricResult{}
		total := 0.0

		m := scoring.SRThresholds(s.Price, s.SRLevels, scoring.ContextQ1, q1SRPoints)
		results["sr_historical_breach"] = m
		total += m.Points

		m = scoring.RSILogic(s.RSI, scoring.ContextQ1, q1RSIPoints, direction(dir))
		results["rsi_momentum"] = m
		total += m.Points

		m = scoring.EMASlope(s.EMA, scoring.ContextQ1, q1EMAPoints)
		results["ema_structure"] = m
		total += m.Points

		m = scoring.OrderBookWhale(s.BidVolume, s.AskVolume, q1WhalePoints)
		results["whale_activity"] = m
		total += m.Points

		var breachPct float64
		if s.NearestSR > 0 {
			breachPct = math.Abs(s.Price-s.NearestSR) / s.NearestSR
		}
		passed := total >= q1PassThreshold && breachPct >= q1BreachFraction

		status, sev := StatusTesting, models.SeverityWarn
		if passed {
			status, sev = StatusBreakthrough, models.SeveritySuccess
		}
		return &models.StageReport{
			Stage:          StageQ1,
			Status:         status,
			Severity:       sev,
			TotalPoints:    total,
			Passed:         passed,
			TriggerNext:    passed,
			Metrics:        results,
			PriceBreachPct: math.Round(breachPct*10000) / 100,
			Timestamp:      s.Taken,
		}
	})
}
