package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadPull/internal/domain/models"
)

func trade(sec int64, price, qty float64, makerSell bool) *models.Trade {
	return &models.Trade{
		Symbol:    "BTCUSDT",
		EventTime: sec * 1000,
		Price:     price,
		Quantity:  qty,
		MakerSell: makerSell,
	}
}

func TestIngestRejectsMalformedTrades(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})

	assert.ErrorIs(t, e.Ingest(nil), ErrMalformedTrade)
	assert.ErrorIs(t, e.Ingest(trade(10, 0, 1, false)), ErrMalformedTrade)
	assert.ErrorIs(t, e.Ingest(trade(10, -5, 1, false)), ErrMalformedTrade)
	assert.ErrorIs(t, e.Ingest(trade(0, 100, 1, false)), ErrMalformedTrade)
	assert.ErrorIs(t, e.Ingest(&models.Trade{EventTime: 1000, Price: 100, Quantity: -1}), ErrMalformedTrade)

	// the engine keeps running after a rejected trade
	require.NoError(t, e.Ingest(trade(10, 100, 1, false)))
	assert.Equal(t, 100.0, e.LastPrice())
}

func TestCandleAggregationOnBoundary(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})

	require.NoError(t, e.Ingest(trade(10, 100, 1, false)))
	require.NoError(t, e.Ingest(trade(200, 101, 2, true)))
	assert.Zero(t, e.HistoryLen(), "no candle inside the interval")

	// crossing the 300s boundary finalizes the buffered interval
	require.NoError(t, e.Ingest(trade(310, 102, 3, false)))
	require.Equal(t, 1, e.HistoryLen())

	c := <-e.Candles()
	assert.Equal(t, int64(0), c.Bucket)
	assert.Equal(t, 101.0, c.Close, "close is the last price before the boundary")
	assert.Equal(t, 3.0, c.Volume)
	assert.Equal(t, -1.0, c.CVD, "+1 taker buy, -2 taker sell; the crossing trade is excluded")
}

func TestSparseFeedSkipsEmptyIntervals(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})

	require.NoError(t, e.Ingest(trade(10, 100, 1, false)))
	// next trade arrives hours later; exactly one candle is finalized
	require.NoError(t, e.Ingest(trade(10_000, 110, 1, false)))
	assert.Equal(t, 1, e.HistoryLen())
}

func TestDeterministicReplay(t *testing.T) {
	feed := func(e *Engine) {
		for i := int64(0); i < 50; i++ {
			require.NoError(t, e.Ingest(trade(10+i*60, 100+float64(i%7), float64(1+i%3), i%2 == 0)))
		}
	}

	a, b := New(Config{Symbol: "BTCUSDT"}), New(Config{Symbol: "BTCUSDT"})
	feed(a)
	feed(b)

	sa, sb := a.Snapshot(), b.Snapshot()
	sb.Taken = sa.Taken
	assert.Equal(t, sa, sb, "identical trade sequences yield identical state")
}

func TestHistoryBounded(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT", HistoryCap: 500})

	// one trade per interval; far more intervals than the capacity
	for i := int64(0); i < 600; i++ {
		require.NoError(t, e.Ingest(trade(i*300+1, 100, 1, false)))
		for len(e.Candles()) > 0 {
			<-e.Candles()
		}
	}
	assert.Equal(t, 500, e.HistoryLen())
}

func TestSnapshotTotalOnEmptyEngine(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})
	s := e.Snapshot()

	assert.Equal(t, "BTCUSDT", s.Symbol)
	assert.Zero(t, s.Price)
	assert.Equal(t, 50.0, s.RSI, "neutral RSI before history exists")
	assert.Zero(t, s.EMA.EMA20.Slope())
	assert.Zero(t, s.AvgVolume)
	assert.Zero(t, s.Vol24h)
	assert.Empty(t, s.CVDSeries)
	assert.NotNil(t, s.SRLevels)
	assert.NotZero(t, s.Taken)
}

func TestSnapshotNeutralEMAFollowsPrice(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})
	require.NoError(t, e.Ingest(trade(10, 250, 1, false)))

	s := e.Snapshot()
	assert.Equal(t, 250.0, s.Price)
	assert.Equal(t, models.EMAPair{Prev: 250, Last: 250}, s.EMA.EMA200)
}

func TestSnapshotSynthesizesQuotes(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})
	require.NoError(t, e.Ingest(trade(10, 100, 1, false)))

	s := e.Snapshot()
	assert.InDelta(t, 99.95, s.BestBid, 1e-9)
	assert.InDelta(t, 100.05, s.BestAsk, 1e-9)

	e.UpdateBook(&models.BookUpdate{BestBid: 99.9, BestAsk: 100.1})
	s = e.Snapshot()
	assert.Equal(t, 99.9, s.BestBid)
	assert.Equal(t, 100.1, s.BestAsk)
}

func TestSnapshotBookVolumes(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})
	e.UpdateBook(&models.BookUpdate{
		BestBid: 99, BestAsk: 101,
		Bids: []models.PriceLevel{{Price: 99, Quantity: 2}, {Price: 98, Quantity: 3}},
		Asks: []models.PriceLevel{{Price: 101, Quantity: 4}},
	})

	s := e.Snapshot()
	assert.Equal(t, 5.0, s.BidVolume)
	assert.Equal(t, 4.0, s.AskVolume)
}

func TestCVDSeriesBounded(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT", CVDSamples: 10})

	for i := int64(0); i < 15; i++ {
		require.NoError(t, e.Ingest(trade(i*300+1, 100, 1, false)))
		for len(e.Candles()) > 0 {
			<-e.Candles()
		}
	}

	s := e.Snapshot()
	require.Len(t, s.CVDSeries, 10)
	// each interval adds +1 of taker-buy volume
	assert.Equal(t, 5.0, s.CVDSeries[0])
	assert.Equal(t, 14.0, s.CVDSeries[9])
}

func TestSRLevelsAndStickyBreach(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT", SRRecomputeEach: 12})

	// seed an established 100..110 trading range
	candles := make([]models.Candle, 24)
	for i := range candles {
		candles[i] = models.Candle{Bucket: int64(i * 300), Close: 100 + float64(i%11), Volume: 1}
	}
	e.SeedHistory(candles)

	s := e.Snapshot()
	require.NotEmpty(t, s.SRLevels)
	lvl := s.SRLevels[models.HorizonShort]
	assert.Equal(t, 100.0, lvl.Support)
	assert.Equal(t, 110.0, lvl.Resistance)
	assert.False(t, lvl.Breached)

	// a close far above the range flags a breach that then sticks
	require.NoError(t, e.Ingest(trade(100*300+1, 200, 1, false)))
	require.NoError(t, e.Ingest(trade(101*300+1, 105, 1, false)))
	s = e.Snapshot()
	assert.True(t, s.SRLevels[models.HorizonShort].Breached, "breach flag is sticky")
}

func TestSeedHistoryWarmStart(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})

	candles := make([]models.Candle, 20)
	for i := range candles {
		candles[i] = models.Candle{
			Bucket: int64(i * 300),
			Close:  100 + float64(i),
			Volume: 2,
			CVD:    float64(i),
		}
	}
	e.SeedHistory(candles)

	assert.Equal(t, 20, e.HistoryLen())
	assert.Equal(t, 119.0, e.LastPrice())

	s := e.Snapshot()
	assert.Equal(t, 2.0, s.AvgVolume)
	assert.Len(t, s.CVDSeries, 10)
	assert.NotEmpty(t, s.SRLevels)
	assert.NotEqual(t, 50.0, s.RSI, "seeded history is enough to define RSI")
}

func TestDroppedCandleHook(t *testing.T) {
	e := New(Config{Symbol: "BTCUSDT"})
	var drops int
	e.OnDroppedCandle(func() { drops++ })

	// overflow the emission buffer without consuming it
	for i := int64(0); i < 70; i++ {
		require.NoError(t, e.Ingest(trade(i*300+1, 100, 1, false)))
	}
	assert.Positive(t, drops)
	assert.Equal(t, 69, e.HistoryLen(), "history keeps growing when emission drops")
}
