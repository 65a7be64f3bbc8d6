package questionnaire

import (
	"LeadPull/internal/domain/models"
	"LeadPull/internal/scoring"
)

// Q5 advisory labels.
const (
	AdviceHighAggression = "HIGH AGGRESSION: Suitable for scalp/intra-day momentum."
	AdviceModerate       = "MODERATE AGGRESSION: Watch for CVD exhaustion."
	AdviceLowMomentum    = "LOW MOMENTUM: Tighten stop-losses for intra-day."
	AdviceStrong         = "STRONG STRUCTURE: Trend supports multi-day holding."
	AdviceTransitional   = "TRANSITIONAL: Moderate conviction for medium term."
	AdviceCaution        = "CAUTION: Long-term trend is bearish/uncertain."
)

// StatusConsultation is the Q5 status line.
const StatusConsultation = "Consultation Ready"

// GenerateAdvice is the terminal Q5 stage: a non-scoring advisory on how
// long to hold, derived from immediate momentum (volume spike + CVD) and
// structural health (RSI sentiment + EMA stack alignment).
func GenerateAdvice(s *models.Snapshot) *models.StageReport {
	return run(StageQ5, s.Taken, func() *models.StageReport {
		spike := scoring.VolSpike(s.CurrVolume, s.AvgVolume, 0)
		cvd := scoring.CVDAnalysis(s.CVDSeries, 0)
		rsi := scoring.RSILogic(s.RSI, scoring.ContextQ5, 0, scoring.Buying)
		ema := scoring.EMASlope(s.EMA, scoring.ContextQ5, 0)

		shortTerm := AdviceLowMomentum
		switch {
		case spike.Status && cvd.Status:
			shortTerm = AdviceHighAggression
		case cvd.Status:
			shortTerm = AdviceModerate
		}

		bullish := scoring.RSISentiment(s.RSI) == scoring.RSIBullish
		aligned := s.EMA.Stacked()
		medLong := AdviceCaution
		switch {
		case bullish && aligned:
			medLong = AdviceStrong
		case bullish || aligned:
			medLong = AdviceTransitional
		}

		return &models.StageReport{
			Stage:    StageQ5,
			Status:   StatusConsultation,
			Severity: models.SeverityAdvice,
			Passed:   true,
			Metrics: map[string]models.MetricResult{
				"vol_spike":     spike,
				"cvd_direction": cvd,
				"rsi_sentiment": rsi,
				"ema_structure": ema,
			},
			Advice: &models.Advice{
				ShortTerm:      shortTerm,
				MediumLongTerm: medLong,
				RSISentiment:   scoring.RSISentiment(s.RSI),
				CVDDirection:   cvd.Raw["direction"].(string),
				EMASlope20:     s.EMA.EMA20.Slope(),
			},
			Timestamp: s.Taken,
		}
	})
}
