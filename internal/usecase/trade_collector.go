package usecase

import (
	"context"

	"LeadPull/internal/domain/models"
	drepo "LeadPull/internal/domain/repository"
	"LeadPull/internal/engine"
	mid "LeadPull/internal/middleware"
)

// TradeCollector drives the market stream: trades go through the realtime
// pipeline into the engine, book updates go to the engine directly.
type TradeCollector struct {
	stream  drepo.MarketStream
	eng     *engine.Engine
	proc    *TradeProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewTradeCollector creates a new TradeCollector instance.
func NewTradeCollector(stream drepo.MarketStream, eng *engine.Engine, proc *TradeProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *TradeCollector {
	return &TradeCollector{stream: stream, eng: eng, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *TradeCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TradeCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	trCh, bkCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, trCh, bkCh, errCh)
	return nil
}

func (c *TradeCollector) consume(ctx context.Context, trCh <-chan *models.Trade, bkCh <-chan *models.BookUpdate, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-errCh:
			// a read error or a closed error channel both mean the
			// stream is dead; reconnect until it comes back
			c.metrics.RecordError("stream")
			for ctx.Err() == nil {
				if rerr := c.stream.Reconnect(ctx); rerr == nil {
					trCh, bkCh, errCh = c.stream.Read(ctx)
					break
				}
				c.metrics.RecordError("reconnect")
			}
		case b := <-bkCh:
			if b != nil {
				c.eng.UpdateBook(b)
			}
		case t := <-trCh:
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.proc.Process(ctx, t)
			}
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

func (c *TradeCollector) Stop() error { return c.stream.Close() }

// Shutdown stops the pipeline and closes the stream.
func (c *TradeCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
