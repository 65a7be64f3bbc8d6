package usecase

import (
	"context"
	"fmt"
	"time"

	"LeadPull/internal/domain/models"
	drepo "LeadPull/internal/domain/repository"
	"LeadPull/internal/engine"
)

// TradeProcessor folds validated trades into the aggregation engine. It is
// the downstream end of the realtime pipeline.
type TradeProcessor struct {
	eng     *engine.Engine
	metrics drepo.Metrics
}

// NewTradeProcessor creates a new TradeProcessor instance.
func NewTradeProcessor(eng *engine.Engine, metrics drepo.Metrics) *TradeProcessor {
	return &TradeProcessor{eng: eng, metrics: metrics}
}

// Process ingests a single trade.
func (p *TradeProcessor) Process(ctx context.Context, t *models.Trade) error {
	if t == nil {
		return fmt.Errorf("trade is nil")
	}

	start := time.Now()
	if err := p.eng.Ingest(t); err != nil {
		p.metrics.RecordError("ingest")
		return fmt.Errorf("process trade: %w", err)
	}

	p.metrics.RecordTradeIngested(t.Symbol)
	p.metrics.RecordLatency("ingest", time.Since(start).Seconds())
	return nil
}
