// Package engine turns an unbounded trade stream into bounded, query-safe
// market state: a 500-candle history on 5-minute boundaries, a running CVD
// with a trailing sample series, an order-book view and derived
// support/resistance levels. One Engine is constructed per monitored
// instrument and injected into every consumer; there is no ambient
// singleton.
package engine

import (
	"errors"
	"math"
	"sync"
	"time"

	"LeadPull/internal/domain/models"
	"LeadPull/internal/indicator"
)

// ErrMalformedTrade is returned for trades that cannot be ingested. The
// caller drops and logs them; ingestion continues.
var ErrMalformedTrade = errors.New("engine: malformed trade")

// Config holds the aggregation constants. Zero values fall back to the
// design defaults.
type Config struct {
	Symbol          string
	IntervalSec     int64   // candle interval, default 300
	HistoryCap      int     // candle history capacity, default 500
	CVDSamples      int     // trailing CVD series length, default 10
	MarketCap       float64 // market-capitalization constant for turnover
	SRRecomputeEach int     // candles between S/R level recomputes, default 12
	RSIPeriod       int     // default 14
}

func (c *Config) applyDefaults() {
	if c.IntervalSec <= 0 {
		c.IntervalSec = 300
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = 500
	}
	if c.CVDSamples < 10 {
		c.CVDSamples = 10
	}
	if c.SRRecomputeEach <= 0 {
		c.SRRecomputeEach = 12
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = 14
	}
}

// Engine is the feed aggregator. A single mutex guards all mutable state:
// trade ingestion and candle aggregation are mutually exclusive with
// snapshot reads, so a snapshot never observes a candle mid-construction
// or a partially updated CVD total.
type Engine struct {
	cfg Config

	mu        sync.Mutex
	history   *candleRing
	lastPrice float64

	// current-interval buffer, reduced to the aggregates a candle needs
	bufBucket int64
	bufCount  int
	bufClose  float64
	bufVolume float64

	cvd       float64
	cvdSeries []float64

	book bookState
	sr   map[models.Horizon]*models.SRLevel

	candlesSinceSR int
	candleCh       chan models.Candle
	dropped        func() // invoked when a finalized candle cannot be emitted
}

type bookState struct {
	bestBid float64
	bestAsk float64
	bids    []models.PriceLevel
	asks    []models.PriceLevel
}

// New creates an Engine for one instrument.
func New(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		cfg:       cfg,
		history:   newCandleRing(cfg.HistoryCap),
		bufBucket: -1,
		cvdSeries: make([]float64, 0, cfg.CVDSamples),
		sr:        make(map[models.Horizon]*models.SRLevel),
		candleCh:  make(chan models.Candle, 64),
	}
}

// OnDroppedCandle installs a hook fired when the candle channel is full and
// a finalized candle is discarded instead of delivered.
func (e *Engine) OnDroppedCandle(fn func()) { e.dropped = fn }

// Candles exposes finalized candles for persistence. Consumption is
// optional: emission never blocks the ingestion path.
func (e *Engine) Candles() <-chan models.Candle { return e.candleCh }

// Ingest folds one trade into the engine state. Crossing a 5-minute
// boundary first finalizes the buffered interval into a candle; the
// boundary-crossing trade then opens the next interval. A trade arriving
// with an empty buffer never triggers aggregation.
func (e *Engine) Ingest(t *models.Trade) error {
	if t == nil || t.Price <= 0 || t.Quantity < 0 || t.EventTime <= 0 {
		return ErrMalformedTrade
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	bucket := (t.EventTime / 1000) / e.cfg.IntervalSec
	if e.bufCount > 0 && bucket != e.bufBucket {
		e.flushLocked()
	}

	e.cvd += t.Delta()
	e.bufBucket = bucket
	e.bufCount++
	e.bufClose = t.Price
	e.bufVolume += t.Quantity
	e.lastPrice = t.Price
	return nil
}

// flushLocked finalizes the buffered interval: synthesizes a candle,
// appends it to history, samples the CVD series, maintains S/R levels and
// clears the buffer. Caller holds e.mu.
func (e *Engine) flushLocked() {
	c := models.Candle{
		Bucket: e.bufBucket * e.cfg.IntervalSec,
		Close:  e.bufClose,
		Volume: e.bufVolume,
		CVD:    e.cvd,
	}

	e.updateSRLocked(c.Close)
	e.history.push(c)

	e.cvdSeries = append(e.cvdSeries, e.cvd)
	if len(e.cvdSeries) > e.cfg.CVDSamples {
		e.cvdSeries = e.cvdSeries[1:]
	}

	e.bufBucket = -1
	e.bufCount = 0
	e.bufClose = 0
	e.bufVolume = 0

	select {
	case e.candleCh <- c:
	default:
		if e.dropped != nil {
			e.dropped()
		}
	}
}

// updateSRLocked recomputes the per-horizon support/resistance levels every
// SRRecomputeEach candles (resetting the breached flags) and otherwise
// marks a horizon breached when the closing price crosses either level.
func (e *Engine) updateSRLocked(close float64) {
	if (len(e.sr) == 0 || e.candlesSinceSR%e.cfg.SRRecomputeEach == 0) && e.history.len() > 0 {
		closes := indicator.Closes(e.history.slice())
		for _, h := range models.Horizons() {
			w := h.Window()
			if w > len(closes) {
				w = len(closes)
			}
			sup, res := closes[len(closes)-w], closes[len(closes)-w]
			for _, c := range closes[len(closes)-w:] {
				sup = math.Min(sup, c)
				res = math.Max(res, c)
			}
			e.sr[h] = &models.SRLevel{Support: sup, Resistance: res}
		}
	}
	for _, lvl := range e.sr {
		if close > lvl.Resistance || close < lvl.Support {
			lvl.Breached = true
		}
	}
	e.candlesSinceSR++
}

// UpdateBook merges an order-book refresh. Quote-only and depth-only
// updates arrive on separate streams, so zero or nil fields leave the
// corresponding state untouched.
func (e *Engine) UpdateBook(b *models.BookUpdate) {
	if b == nil {
		return
	}
	e.mu.Lock()
	if b.BestBid > 0 {
		e.book.bestBid = b.BestBid
	}
	if b.BestAsk > 0 {
		e.book.bestAsk = b.BestAsk
	}
	if b.Bids != nil {
		e.book.bids = b.Bids
	}
	if b.Asks != nil {
		e.book.asks = b.Asks
	}
	e.mu.Unlock()
}

// SeedHistory warm-starts the candle history from persisted candles,
// oldest first. Used once at startup before the live feed attaches.
func (e *Engine) SeedHistory(candles []models.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range candles {
		e.history.push(c)
		e.cvd = c.CVD
		e.cvdSeries = append(e.cvdSeries, c.CVD)
		if len(e.cvdSeries) > e.cfg.CVDSamples {
			e.cvdSeries = e.cvdSeries[1:]
		}
		e.lastPrice = c.Close
		e.updateSRLocked(c.Close)
	}
}

// LastPrice returns the most recent trade price, 0 before any trade.
func (e *Engine) LastPrice() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPrice
}

// HistoryLen returns the number of finalized candles held.
func (e *Engine) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.len()
}

// Snapshot builds the immutable market projection. It never blocks on
// trade arrival and always succeeds: an empty history yields the neutral
// defaults rather than an error, so every downstream evaluator stays total.
func (e *Engine) Snapshot() *models.Snapshot {
	e.mu.Lock()

	candles := e.history.slice()
	closes := indicator.Closes(candles)
	vols := make([]float64, len(candles))
	for i, c := range candles {
		vols[i] = c.Volume
	}

	price := e.lastPrice
	if price == 0 && len(closes) > 0 {
		price = closes[len(closes)-1]
	}

	s := &models.Snapshot{
		Symbol:      e.cfg.Symbol,
		Taken:       time.Now().UnixMilli(),
		Price:       price,
		AvgVolume:   indicator.Mean(vols),
		Vol24h:      indicator.TailSum(vols, 288),
		VolPrevHour: indicator.TailSum(vols, 12),
		CVDSeries:   append([]float64(nil), e.cvdSeries...),
		BestBid:     e.book.bestBid,
		BestAsk:     e.book.bestAsk,
		Bids:        append([]models.PriceLevel(nil), e.book.bids...),
		Asks:        append([]models.PriceLevel(nil), e.book.asks...),
		MarketCap:   e.cfg.MarketCap,
		SRLevels:    make(map[models.Horizon]models.SRLevel, len(e.sr)),
	}
	if len(vols) > 0 {
		s.CurrVolume = vols[len(vols)-1]
	}
	for h, lvl := range e.sr {
		s.SRLevels[h] = *lvl
	}
	e.mu.Unlock()

	// Indicators are pure functions of the copied series; compute them
	// outside the lock.
	if rsi, ok := indicator.RSI(closes, e.cfg.RSIPeriod); ok {
		s.RSI = rsi
	} else {
		s.RSI = indicator.NeutralRSI
	}
	s.EMA = models.EMASet{
		EMA20:  emaOrDefault(closes, 20, price),
		EMA50:  emaOrDefault(closes, 50, price),
		EMA200: emaOrDefault(closes, 200, price),
	}

	for _, lvl := range s.SRLevels {
		for _, v := range []float64{lvl.Support, lvl.Resistance} {
			if v <= 0 {
				continue
			}
			if s.NearestSR == 0 || math.Abs(price-v) < math.Abs(price-s.NearestSR) {
				s.NearestSR = v
			}
		}
	}

	s.BidVolume = sumLevels(s.Bids)
	s.AskVolume = sumLevels(s.Asks)

	// Synthesize best quotes around the last price when no book-ticker
	// data has arrived yet, so spread metrics stay total.
	if s.BestAsk == 0 && price > 0 {
		s.BestBid = price * 0.9995
		s.BestAsk = price * 1.0005
	}
	return s
}

func emaOrDefault(closes []float64, window int, price float64) models.EMAPair {
	if p, ok := indicator.EMA(closes, window); ok {
		return p
	}
	return models.EMAPair{Prev: price, Last: price}
}

func sumLevels(levels []models.PriceLevel) float64 {
	var sum float64
	for _, l := range levels {
		sum += l.Quantity
	}
	return sum
}
