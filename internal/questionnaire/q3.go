package questionnaire

import (
	"math"

	"LeadPull/internal/domain/models"
	"LeadPull/internal/scoring"
)

// Q3 point budgets and pass threshold.
const (
	q3VolSpikePoints = 2.5
	q3CVDPoints      = 3.33
	q3WhalePoints    = 2.5
	q3SRPoints       = 2.0
	q3EMAPoints      = 1.5
	q3PassThreshold  = 7.0
)

// Q3 status lines.
const (
	StatusAggressive = "Aggressive"
	StatusWait       = "Wait"
)

// EvaluateAggression is the Q3 confirmation: is the market trading
// aggressively enough to act on the lead? The verdict needs at least 7
// points.
func EvaluateAggression(s *models.Snapshot) *models.StageReport {
	return run(StageQ3, s.Taken, func() *models.StageReport {
		results := map[string]models.MetricResult{}
		total := 0.0

		m := scoring.VolSpike(s.CurrVolume, s.AvgVolume, q3VolSpikePoints)
		results["vol_spike"] = m
		total += m.Points

		m = scoring.CVDAnalysis(s.CVDSeries, q3CVDPoints)
		results["cvd_aggression"] = m
		total += m.Points

		m = scoring.OrderBookWhale(s.BidVolume, s.AskVolume, q3WhalePoints)
		results["whale_activity"] = m
		total += m.Points

		m = scoring.SRThresholds(s.Price, s.SRLevels, scoring.ContextQ3, q3SRPoints)
		results["sr_break"] = m
		total += m.Points

		m = scoring.EMASlope(s.EMA, scoring.ContextQ3, q3EMAPoints)
		results["trend_slope"] = m
		total += m.Points

		passed := total >= q3PassThreshold
		status, sev := StatusWait, models.SeverityWarn
		if passed {
			status, sev = StatusAggressive, models.SeveritySuccess
		}
		return &models.StageReport{
			Stage:       StageQ3,
			Status:      status,
			Severity:    sev,
			TotalPoints: math.Round(total*100) / 100,
			Passed:      passed,
			TriggerNext: passed,
			Metrics:     results,
			Timestamp:   s.Taken,
		}
	})
}
