package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadPull/internal/domain/models"
	"LeadPull/internal/scoring"
)

// hotSnapshot builds a snapshot that clears every stage threshold.
func hotSnapshot(t *testing.T) *models.Snapshot {
	t.Helper()

	return &models.Snapshot{
		Symbol:      "BTCUSDT",
		Taken:       1700000000000,
		Price:       100,
		CurrVolume:  200,
		AvgVolume:   100,
		Vol24h:      300,
		VolPrevHour: 100,
		RSI:         60,
		EMA: models.EMASet{
			EMA20:  models.EMAPair{Prev: 100, Last: 101},
			EMA50:  models.EMAPair{Prev: 104, Last: 105},
			EMA200: models.EMAPair{Prev: 109, Last: 110},
		},
		CVDSeries: []float64{1, 2, 3, 4},
		BestBid:   99.99,
		BestAsk:   100.01,
		BidVolume: 30,
		AskVolume: 10,
		MarketCap: 1_000_000,
		SRLevels: map[models.Horizon]models.SRLevel{
			models.HorizonShort: {Support: 90, Resistance: 95, Breached: true},
		},
		NearestSR: 90,
	}
}

// coldSnapshot builds a freshly started snapshot: neutral indicators, no
// book, no history.
func coldSnapshot(t *testing.T) *models.Snapshot {
	t.Helper()

	return &models.Snapshot{
		Symbol: "BTCUSDT",
		Taken:  1700000000000,
		Price:  100,
		RSI:    50,
		EMA: models.EMASet{
			EMA20:  models.EMAPair{Prev: 100, Last: 100},
			EMA50:  models.EMAPair{Prev: 100, Last: 100},
			EMA200: models.EMAPair{Prev: 100, Last: 100},
		},
		SRLevels: map[models.Horizon]models.SRLevel{},
	}
}

func TestSurveyMarket_GeneratesLead(t *testing.T) {
	r := SurveyMarket(hotSnapshot(t))

	require.Equal(t, StageQ2, r.Stage)
	assert.Equal(t, StatusLeadGenerated, r.Status)
	assert.Equal(t, models.SeveritySuccess, r.Severity)
	assert.True(t, r.Passed)
	assert.True(t, r.TriggerNext)
	// everything but the S/R proximity check scores: 2 + 3 + 2 + 1
	assert.Equal(t, 8.0, r.TotalPoints)
	assert.Len(t, r.Metrics, 5)
}

func TestSurveyMarket_ColdStartSurveys(t *testing.T) {
	r := SurveyMarket(coldSnapshot(t))

	assert.Equal(t, StatusSurveying, r.Status)
	assert.Equal(t, models.SeverityInfo, r.Severity)
	assert.False(t, r.Passed)
	assert.Zero(t, r.TotalPoints)
}

func TestSurveyMarket_Idempotent(t *testing.T) {
	s := hotSnapshot(t)
	assert.Equal(t, SurveyMarket(s), SurveyMarket(s))
}

func TestEvaluateBreakthrough_Confirmed(t *testing.T) {
	r := EvaluateBreakthrough(hotSnapshot(t), scoring.Buying)

	require.Equal(t, StageQ1, r.Stage)
	assert.Equal(t, StatusBreakthrough, r.Status)
	assert.True(t, r.Passed)
	// price 100 vs nearest level 90 is an 11.11% breach
	assert.InDelta(t, 11.11, r.PriceBreachPct, 1e-9)
	assert.Equal(t, 8.0, r.TotalPoints)
}

func TestEvaluateBreakthrough_PointsWithoutBreachFails(t *testing.T) {
	s := hotSnapshot(t)
	s.NearestSR = 99 // ~1% away, below the 5% breach requirement

	r := EvaluateBreakthrough(s, scoring.Buying)

	assert.Equal(t, StatusTesting, r.Status)
	assert.False(t, r.Passed)
	assert.False(t, r.TriggerNext)
	assert.Equal(t, 8.0, r.TotalPoints, "points still accrue without a breach")
}

func TestEvaluateBreakthrough_NoNearestLevel(t *testing.T) {
	s := hotSnapshot(t)
	s.NearestSR = 0

	r := EvaluateBreakthrough(s, scoring.Buying)

	assert.False(t, r.Passed)
	assert.Zero(t, r.PriceBreachPct)
}

func TestEvaluateAggression_Passes(t *testing.T) {
	r := EvaluateAggression(hotSnapshot(t))

	require.Equal(t, StageQ3, r.Stage)
	assert.Equal(t, StatusAggressive, r.Status)
	assert.True(t, r.TriggerNext)
	// 2.5 + 3.33 + 2.5 + 2.0 + 1.5
	assert.Equal(t, 11.83, r.TotalPoints)
}

func TestEvaluateAggression_FlatMarketWaits(t *testing.T) {
	r := EvaluateAggression(coldSnapshot(t))

	assert.Equal(t, StatusWait, r.Status)
	assert.Equal(t, models.SeverityWarn, r.Severity)
	assert.False(t, r.Passed)
}

func TestVerifyEfficiency(t *testing.T) {
	r := VerifyEfficiency(hotSnapshot(t), scoring.Buying)

	require.Equal(t, StageQ4, r.Stage)
	assert.Equal(t, StatusEfficiencyOK, r.Status)
	assert.True(t, r.Passed)
	assert.Equal(t, 4.0, r.TotalPoints)

	r = VerifyEfficiency(coldSnapshot(t), scoring.Buying)
	assert.Equal(t, StatusLowEfficiency, r.Status)
	assert.Equal(t, models.SeverityError, r.Severity)
	assert.False(t, r.TriggerNext)
}

func TestGenerateAdvice_AggressiveTrend(t *testing.T) {
	r := GenerateAdvice(hotSnapshot(t))

	require.Equal(t, StageQ5, r.Stage)
	require.NotNil(t, r.Advice)
	assert.Equal(t, StatusConsultation, r.Status)
	assert.Equal(t, models.SeverityAdvice, r.Severity)
	assert.Equal(t, AdviceHighAggression, r.Advice.ShortTerm)
	assert.Equal(t, AdviceStrong, r.Advice.MediumLongTerm)
	assert.Equal(t, scoring.RSIBullish, r.Advice.RSISentiment)
	assert.InDelta(t, 1.0, r.Advice.EMASlope20, 1e-9)
}

func TestGenerateAdvice_ColdStart(t *testing.T) {
	r := GenerateAdvice(coldSnapshot(t))

	require.NotNil(t, r.Advice)
	assert.Equal(t, AdviceLowMomentum, r.Advice.ShortTerm)
	assert.Equal(t, AdviceCaution, r.Advice.MediumLongTerm)
	assert.True(t, r.Passed, "the advisory stage always completes")
}

func TestRunRecoversPanics(t *testing.T) {
	r := run(StageQ3, 42, func() *models.StageReport {
		panic("evaluator bug")
	})

	require.NotNil(t, r)
	assert.Equal(t, StageQ3, r.Stage)
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, models.SeverityError, r.Severity)
	assert.Zero(t, r.TotalPoints)
	assert.False(t, r.TriggerNext)
	assert.Equal(t, int64(42), r.Timestamp)
}
