package models

// Severity tags a report line for the UI sink. The values are the hex
// colors the log terminal renders.
type Severity string

const (
	SeverityInfo    Severity = "#3498db"
	SeveritySuccess Severity = "#2ecc71"
	SeverityWarn    Severity = "#f1c40f"
	SeverityError   Severity = "#e74c3c"
	SeverityAdvice  Severity = "#9b59b6"
)

// MetricResult is the graded outcome of one scoring rule: awarded points,
// a pass/fail status and a structured explanation payload. Results are
// produced fresh per evaluation and never mutated.
type MetricResult struct {
	Points float64        `json:"points"`
	Status bool           `json:"status"`
	Raw    map[string]any `json:"raw_value"`
}

// Advice is the Q5 advisory verdict pair plus the raw readings behind it.
type Advice struct {
	ShortTerm      string  `json:"short_term"`
	MediumLongTerm string  `json:"medium_long_term"`
	RSISentiment   string  `json:"rsi_sentiment"`
	CVDDirection   string  `json:"cvd_direction"`
	EMASlope20     float64 `json:"ema_slope_20"`
}

// StageReport is one questionnaire invocation's outcome.
type StageReport struct {
	Stage       string                  `json:"stage"`
	Status      string                  `json:"status"`
	Severity    Severity                `json:"severity"`
	TotalPoints float64                 `json:"total_points"`
	Passed      bool                    `json:"passed"`
	TriggerNext bool                    `json:"trigger_next"`
	Metrics     map[string]MetricResult `json:"metrics_detail,omitempty"`
	Advice      *Advice                 `json:"advice,omitempty"`

	// Q1 only: distance from the nearest S/R level, percent.
	PriceBreachPct float64 `json:"price_breach_pct,omitempty"`

	Timestamp int64 `json:"timestamp"` // unix milliseconds
}

// WhaleOrder is one large resting order spotted by the scanner.
type WhaleOrder struct {
	Side     string  `json:"side"` // BUY or SELL
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	ValueUSD float64 `json:"value_usd"`
	Seen     int64   `json:"seen"` // unix milliseconds
}
