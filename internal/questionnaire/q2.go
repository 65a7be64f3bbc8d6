package questionnaire

import (
	"LeadPull/internal/domain/models"
	"LeadPull/internal/scoring"
)

// Q2 point budgets and pass threshold.
const (
	q2Vol24hPoints   = 2.0
	q2VolSpikePoints = 3.0
	q2WhalePoints    = 2.0
	q2SRPoints       = 2.0
	q2SpreadPoints   = 1.0
	q2PassThreshold  = 6.0
)

// Q2 status lines.
const (
	StatusLeadGenerated = "Lead Generated"
	StatusSurveying     = "Surveying"
)

// SurveyMarket is the Q2 sudden-interest survey. A total of at least 6
// points generates a lead and arms the Q1 and Q3 chains.
func SurveyMarket(s *models.Snapshot) *models.StageReport {
	return run(StageQ2, s.Taken, func() *models.StageReport {
		results := map[string]models.MetricResult{}
		total := 0.0

		m := scoring.Vol24h(s.Vol24h, s.VolPrevHour, q2Vol24hPoints)
		results["vol_24h"] = m
		total += m.Points

		m = scoring.VolSpike(s.CurrVolume, s.AvgVolume, q2VolSpikePoints)
		results["vol_spike"] = m
		total += m.Points

		m = scoring.OrderBookWhale(s.BidVolume, s.AskVolume, q2WhalePoints)
		results["whale_activity"] = m
		total += m.Points

		m = scoring.SRThresholds(s.Price, s.SRLevels, scoring.ContextQ2, q2SRPoints)
		results["sr_proximity"] = m
		total += m.Points

		m = scoring.BidAskSpread(s.BestBid, s.BestAsk, q2SpreadPoints)
		results["spread"] = m
		total += m.Points

		generated := total >= q2PassThreshold
		status, sev := StatusSurveying, models.SeverityInfo
		if generated {
			status, sev = StatusLeadGenerated, models.SeveritySuccess
		}
		return &models.StageReport{
			Stage:       StageQ2,
			Status:      status,
			Severity:    sev,
			TotalPoints: total,
			Passed:      generated,
			TriggerNext: generated,
			Metrics:     results,
			Timestamp:   s.Taken,
		}
	})
}
