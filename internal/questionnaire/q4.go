package questionnaire

import (
	"LeadPull/internal/domain/models"
	"LeadPull/internal/scoring"
)

// Q4 point budgets and pass threshold.
const (
	q4TurnoverPoints = 2.0
	q4SpreadPoints   = 1.5
	q4RSIPoints      = 0.5
	q4PassThreshold  = 2.0
)

// Q4 status lines.
const (
	StatusEfficiencyOK  = "Efficiency Verified"
	StatusLowEfficiency = "Low Efficiency - Lead Blocked"
)

// VerifyEfficiency is the Q4 final confirmation for an aggressive-trading
// lead: is the market liquid and efficient enough right now? The verdict
// needs at least 2 points; a failed verification terminates the chain.
func VerifyEfficiency(s *models.Snapshot, dir scoring.Direction) *models.StageReport {
	return run(StageQ4, s.Taken, func() *models.StageReport {
		results := map[string]models.MetricResult{}
		total := 0.0

		m := scoring.TurnoverRatio(s.Vol24h, s.MarketCap, q4TurnoverPoints)
		results["turnover_efficiency"] = m
		total += m.Points

		m = scoring.BidAskSpread(s.BestBid, s.BestAsk, q4SpreadPoints)
		results["liquidity_spread"] = m
		total += m.Points

		m = scoring.RSILogic(s.RSI, scoring.ContextQ4, q4RSIPoints, direction(dir))
		results["momentum_alignment"] = m
		total += m.Points

		passed := total >= q4PassThreshold
		status, sev := StatusLowEfficiency, models.SeverityError
		if passed {
			status, sev = StatusEfficiencyOK, models.SeveritySuccess
		}
		return &models.StageReport{
			Stage:       StageQ4,
			Status:      status,
			Severity:    sev,
			TotalPoints: total,
			Passed:      passed,
			TriggerNext: passed,
			Metrics:     results,
			Timestamp:   s.Taken,
		}
	})
}
