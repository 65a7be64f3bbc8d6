package models

// Trade is a single raw trade event from the market feed. Trades are
// ephemeral: the engine folds them into its buffers and discards them.
type Trade struct {
	Symbol    string
	EventTime int64 // event time in milliseconds
	Price     float64
	Quantity  float64
	MakerSell bool // buyer was the maker, i.e. the taker sold
}

// Delta returns the signed volume contribution of the trade:
// +quantity for a taker buy, -quantity for a taker sell.
func (t *Trade) Delta() float64 {
	if t.MakerSell {
		return -t.Quantity
	}
	return t.Quantity
}

// PriceLevel is one order-book level.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// BookUpdate carries a refresh of the order-book view: best quotes plus
// aggregated and per-level depth.
type BookUpdate struct {
	BestBid float64
	BestAsk float64
	Bids    []PriceLevel
	Asks    []PriceLevel
}

// Candle is one fixed-interval aggregate of trades: close price, summed
// volume and the running CVD sampled at the close. Immutable once created.
type Candle struct {
	Bucket int64 // unix seconds of the interval start
	Close  float64
	Volume float64
	CVD    float64
}

// Horizon names a support/resistance lookback window.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Horizons lists all lookback windows in ascending order.
func Horizons() []Horizon {
	return []Horizon{HorizonShort, HorizonMedium, HorizonLong}
}

// Window returns the horizon's lookback in candles.
func (h Horizon) Window() int {
	switch h {
	case HorizonShort:
		return 48 // 4h of 5m candles
	case HorizonMedium:
		return 144 // 12h
	default:
		return 480 // 40h, effectively full history
	}
}

// SRLevel is one horizon's support/resistance pair. Breached is sticky: it
// is set when a closing price crosses either level and survives until the
// levels are recomputed.
type SRLevel struct {
	Support    float64
	Resistance float64
	Breached   bool
}

// EMAPair exposes the last two values of an EMA series so consumers can
// compute a slope without the full history.
type EMAPair struct {
	Prev float64
	Last float64
}

// Slope returns Last - Prev.
func (p EMAPair) Slope() float64 { return p.Last - p.Prev }

// EMASet groups the three trend horizons used by the questionnaires.
type EMASet struct {
	EMA20  EMAPair
	EMA50  EMAPair
	EMA200 EMAPair
}

// Stacked reports the bearish-stack alignment ema200 > ema50 > ema20.
func (s EMASet) Stacked() bool {
	return s.EMA200.Last > s.EMA50.Last && s.EMA50.Last > s.EMA20.Last
}

// Snapshot is the immutable point-in-time market projection every
// questionnaire consumes. It is always producible: with no history the
// indicator fields hold their neutral defaults (RSI 50, EMA pairs equal to
// the last price, volumes zero), so downstream evaluators never branch on
// missing data.
type Snapshot struct {
	Symbol string
	Taken  int64 // unix milliseconds

	Price       float64
	CurrVolume  float64 // current-interval volume
	AvgVolume   float64 // mean candle volume over history
	Vol24h      float64 // sum of last 288 candles
	VolPrevHour float64 // sum of last 12 candles

	RSI       float64
	EMA       EMASet
	CVDSeries []float64

	BestBid   float64
	BestAsk   float64
	BidVolume float64
	AskVolume float64
	Bids      []PriceLevel
	Asks      []PriceLevel

	MarketCap float64
	SRLevels  map[Horizon]SRLevel
	NearestSR float64 // S/R level closest to the current price
}
