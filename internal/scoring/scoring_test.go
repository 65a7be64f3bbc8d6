package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"LeadPull/internal/domain/models"
)

func TestBidAskSpread(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask float64
		want     bool
	}{
		{"tight spread passes", 99.99, 100.01, true},
		{"just under threshold passes", 99.71, 100.0, true}, // 0.29%
		{"above threshold fails", 99.6, 100.0, false},       // 0.40%
		{"wide spread fails", 99.0, 100.0, false},
		{"empty book fails", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BidAskSpread(tt.bid, tt.ask, 1.5)
			assert.Equal(t, tt.want, m.Status)
			if tt.want {
				assert.Equal(t, 1.5, m.Points)
			} else {
				assert.Zero(t, m.Points)
			}
		})
	}
}

func TestVolSpikeStrictThreshold(t *testing.T) {
	assert.True(t, VolSpike(151, 100, 3).Status, "1.51 is above the ratio")
	assert.False(t, VolSpike(150, 100, 3).Status, "exactly 1.50 is not a spike")
	assert.False(t, VolSpike(100, 0, 3).Status, "no average yet")
}

func TestVol24hInclusiveThreshold(t *testing.T) {
	assert.True(t, Vol24h(150, 100, 2).Status, "exactly +50% passes")
	assert.False(t, Vol24h(149, 100, 2).Status)
	assert.False(t, Vol24h(150, 0, 2).Status, "no prior-hour volume")

	m := Vol24h(300, 100, 2)
	assert.Equal(t, 200.0, m.Raw["increase_pct"])
}

func TestOrderBookWhale(t *testing.T) {
	buying := OrderBookWhale(30, 10, 2)
	assert.True(t, buying.Status)
	assert.Equal(t, WhaleBuying, buying.Raw["detected_activity"])

	shorting := OrderBookWhale(10, 30, 2)
	assert.True(t, shorting.Status)
	assert.Equal(t, WhaleShorting, shorting.Raw["detected_activity"])

	balanced := OrderBookWhale(10, 10, 2)
	assert.False(t, balanced.Status)
	assert.Equal(t, WhaleNeutral, balanced.Raw["detected_activity"])

	assert.False(t, OrderBookWhale(10, 0, 2).Status, "empty ask side")
}

func TestTurnoverRatio(t *testing.T) {
	m := TurnoverRatio(50_000, 1_000_000, 2)
	assert.True(t, m.Status)
	assert.Equal(t, "High", m.Raw["efficiency_multiplier"])

	m = TurnoverRatio(10_000, 1_000_000, 2)
	assert.True(t, m.Status)
	assert.Equal(t, "Standard", m.Raw["efficiency_multiplier"])

	assert.False(t, TurnoverRatio(10_000, 0, 2).Status, "unknown market cap")
	assert.False(t, TurnoverRatio(0, 1_000_000, 2).Status, "no traded volume")
}

func TestCVDAnalysis(t *testing.T) {
	rising := CVDAnalysis([]float64{1, 2, 3, 4}, 3.33)
	assert.True(t, rising.Status)
	assert.Equal(t, CVDBuying, rising.Raw["direction"])

	falling := CVDAnalysis([]float64{4, 3, 2, 1}, 3.33)
	assert.True(t, falling.Status)
	assert.Equal(t, CVDSelling, falling.Raw["direction"])

	plateau := CVDAnalysis([]float64{1, 2, 2, 4}, 3.33)
	assert.False(t, plateau.Status, "monotonicity must be strict")
	assert.Equal(t, CVDNeutral, plateau.Raw["direction"])

	short := CVDAnalysis([]float64{1, 2, 3}, 3.33)
	assert.False(t, short.Status)

	// only the trailing window matters
	lateRise := CVDAnalysis([]float64{9, 9, 9, 1, 2, 3, 4}, 3.33)
	assert.True(t, lateRise.Status)
}

func TestRSISentiment(t *testing.T) {
	assert.Equal(t, RSIOverbought, RSISentiment(75))
	assert.Equal(t, RSIBullish, RSISentiment(60))
	assert.Equal(t, RSIBearish, RSISentiment(50))
	assert.Equal(t, RSIBearish, RSISentiment(30))
	assert.Equal(t, RSIOversold, RSISentiment(20))
}

func TestRSILogicCorridors(t *testing.T) {
	assert.True(t, RSILogic(52, ContextQ1, 1.5, Buying).Status)
	assert.True(t, RSILogic(67, ContextQ1, 1.5, Buying).Status)
	assert.False(t, RSILogic(68, ContextQ1, 1.5, Buying).Status)
	assert.False(t, RSILogic(51, ContextQ1, 1.5, Buying).Status)

	assert.True(t, RSILogic(33, ContextQ4, 0.5, Selling).Status)
	assert.False(t, RSILogic(49, ContextQ4, 0.5, Selling).Status)

	// only Q1 and Q4 award momentum points
	assert.False(t, RSILogic(60, ContextQ2, 1.5, Buying).Status)
	assert.False(t, RSILogic(60, ContextQ5, 1.5, Buying).Status)
}

func TestEMASlope(t *testing.T) {
	trending := models.EMASet{
		EMA20:  models.EMAPair{Prev: 100, Last: 101},
		EMA50:  models.EMAPair{Prev: 104, Last: 105},
		EMA200: models.EMAPair{Prev: 109, Last: 110},
	}
	flat := models.EMASet{
		EMA20:  models.EMAPair{Prev: 100, Last: 100},
		EMA50:  models.EMAPair{Prev: 100, Last: 100},
		EMA200: models.EMAPair{Prev: 100, Last: 100},
	}

	assert.True(t, EMASlope(trending, ContextQ3, 1.5).Status, "nonzero 20-EMA slope")
	assert.False(t, EMASlope(flat, ContextQ3, 1.5).Status)

	assert.True(t, EMASlope(trending, ContextQ1, 1.5).Status, "stacked 200>50>20")
	assert.False(t, EMASlope(flat, ContextQ1, 1.5).Status)
}

func TestSRThresholds(t *testing.T) {
	levels := map[models.Horizon]models.SRLevel{
		models.HorizonShort: {Support: 90, Resistance: 100.5},
	}

	// Q2: within 1% of the resistance
	assert.True(t, SRThresholds(100, levels, ContextQ2, 2).Status)
	assert.False(t, SRThresholds(95, levels, ContextQ2, 2).Status)

	// Q3: accepted break beyond 0.5%
	assert.True(t, SRThresholds(101.2, levels, ContextQ3, 2).Status)
	assert.True(t, SRThresholds(89.0, levels, ContextQ3, 2).Status)
	assert.False(t, SRThresholds(100.6, levels, ContextQ3, 2).Status)

	// Q1: sticky historical breach flag
	assert.False(t, SRThresholds(100, levels, ContextQ1, 2).Status)
	levels[models.HorizonShort] = models.SRLevel{Support: 90, Resistance: 100.5, Breached: true}
	assert.True(t, SRThresholds(100, levels, ContextQ1, 2).Status)

	// degenerate zero levels never register proximity
	empty := map[models.Horizon]models.SRLevel{models.HorizonShort: {}}
	assert.False(t, SRThresholds(100, empty, ContextQ2, 2).Status)
}
