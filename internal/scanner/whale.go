// Package scanner watches the order book for resting whale orders: single
// levels whose notional value crosses a configured USD floor.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
	"LeadPull/pkg/logger"
)

// Order sides as reported in whale sightings.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Config tunes the scanner.
type Config struct {
	ScanInterval time.Duration // how often the book is swept
	MinValueUSD  float64       // notional floor for a whale order
	Retention    time.Duration // how long sightings are kept
}

func (c *Config) applyDefaults() {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 10 * time.Minute
	}
	if c.MinValueUSD <= 0 {
		c.MinValueUSD = 500_000
	}
	if c.Retention <= 0 {
		c.Retention = time.Hour
	}
}

// Clock abstracts wall time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// WhaleScanner periodically sweeps the snapshot's book depth and keeps a
// trailing window of sightings.
type WhaleScanner struct {
	cfg   Config
	src   domrepo.SnapshotSource
	sink  domrepo.ReportSink
	log   *logger.Logger
	clock Clock

	mu     sync.Mutex
	seen   []models.WhaleOrder
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customizes a WhaleScanner.
type Option func(*WhaleScanner)

// WithClock substitutes the wall clock.
func WithClock(c Clock) Option {
	return func(w *WhaleScanner) { w.clock = c }
}

// New creates a WhaleScanner over the given snapshot source.
func New(src domrepo.SnapshotSource, sink domrepo.ReportSink, log *logger.Logger, cfg Config, opts ...Option) *WhaleScanner {
	cfg.applyDefaults()
	w := &WhaleScanner{
		cfg:   cfg,
		src:   src,
		sink:  sink,
		log:   log,
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the periodic sweep.
func (w *WhaleScanner) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)
}

// Stop terminates the sweep loop.
func (w *WhaleScanner) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *WhaleScanner) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan sweeps the current book depth once and returns the whale orders it
// found. Sightings are appended to the trailing window.
func (w *WhaleScanner) Scan() []models.WhaleOrder {
	s := w.src.Snapshot()
	now := w.clock.Now().UnixMilli()

	var found []models.WhaleOrder
	for _, lvl := range s.Bids {
		if o, ok := w.inspect(SideBuy, lvl, now); ok {
			found = append(found, o)
		}
	}
	for _, lvl := range s.Asks {
		if o, ok := w.inspect(SideSell, lvl, now); ok {
			found = append(found, o)
		}
	}

	w.mu.Lock()
	w.seen = append(w.seen, found...)
	w.pruneLocked(now)
	w.mu.Unlock()

	for _, o := range found {
		w.sink.Log(fmt.Sprintf("whale %s order: %.4f @ %.2f ($%.0f)", o.Side, o.Quantity, o.Price, o.ValueUSD), models.SeverityWarn)
	}
	if len(found) > 0 {
		w.log.Info("whale sweep", logger.String("symbol", s.Symbol), logger.Int("orders", len(found)))
	}
	return found
}

func (w *WhaleScanner) inspect(side string, lvl models.PriceLevel, now int64) (models.WhaleOrder, bool) {
	value := lvl.Price * lvl.Quantity
	if value < w.cfg.MinValueUSD {
		return models.WhaleOrder{}, false
	}
	return models.WhaleOrder{
		Side:     side,
		Price:    lvl.Price,
		Quantity: lvl.Quantity,
		ValueUSD: value,
		Seen:     now,
	}, true
}

// pruneLocked drops sightings older than the retention window.
func (w *WhaleScanner) pruneLocked(now int64) {
	cutoff := now - w.cfg.Retention.Milliseconds()
	kept := w.seen[:0]
	for _, o := range w.seen {
		if o.Seen >= cutoff {
			kept = append(kept, o)
		}
	}
	w.seen = kept
}

// Recent returns sightings from the last d, newest retained order last.
func (w *WhaleScanner) Recent(d time.Duration) []models.WhaleOrder {
	cutoff := w.clock.Now().UnixMilli() - d.Milliseconds()

	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.WhaleOrder, 0, len(w.seen))
	for _, o := range w.seen {
		if o.Seen >= cutoff {
			out = append(out, o)
		}
	}
	return out
}
