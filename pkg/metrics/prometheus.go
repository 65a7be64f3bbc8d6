package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	tradesIngested  *prometheus.CounterVec
	candlesBuilt    *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	stageEvals      *prometheus.CounterVec
	stagePoints     *prometheus.GaugeVec
	leadTransitions *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		tradesIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpull_trades_ingested_total",
				Help: "Total number of trades folded into the aggregation engine",
			},
			[]string{"symbol"},
		),
		candlesBuilt: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpull_candles_built_total",
				Help: "Total number of finalized five-minute candles",
			},
			[]string{"symbol"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leadpull_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		stageEvals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpull_stage_evaluations_total",
				Help: "Questionnaire stage evaluations by outcome",
			},
			[]string{"stage", "passed"},
		),
		stagePoints: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leadpull_stage_points",
				Help: "Points awarded by the most recent evaluation of a stage",
			},
			[]string{"stage"},
		),
		leadTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpull_lead_transitions_total",
				Help: "Lead chain phase transitions",
			},
			[]string{"chain", "phase"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTradeIngested counts one trade accepted by the engine.
func (r *Recorder) RecordTradeIngested(symbol string) {
	r.tradesIngested.WithLabelValues(symbol).Inc()
}

// RecordCandleBuilt counts one finalized candle.
func (r *Recorder) RecordCandleBuilt(symbol string) {
	r.candlesBuilt.WithLabelValues(symbol).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordStageEvaluation records a questionnaire stage outcome.
func (r *Recorder) RecordStageEvaluation(stage string, passed bool, points float64) {
	outcome := "false"
	if passed {
		outcome = "true"
	}
	r.stageEvals.WithLabelValues(stage, outcome).Inc()
	r.stagePoints.WithLabelValues(stage).Set(points)
}

// RecordLeadTransition records a lead chain phase change.
func (r *Recorder) RecordLeadTransition(chain, phase string) {
	r.leadTransitions.WithLabelValues(chain, phase).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
