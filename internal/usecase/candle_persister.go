package usecase

import (
	"context"
	"sync"
	"time"

	"LeadPull/internal/domain/models"
	drepo "LeadPull/internal/domain/repository"
	applogger "LeadPull/pkg/logger"
)

// CandlePersister drains finalized candles from the engine into ClickHouse
// and refreshes the cached snapshot after each candle. Persistence is
// best-effort: a failed insert is logged and the candle dropped, live
// aggregation never stalls on storage.
type CandlePersister struct {
	candles  <-chan models.Candle
	symbol   string
	store    drepo.CandleStore
	cache    drepo.SnapshotCache
	src      drepo.SnapshotSource
	metrics  drepo.Metrics
	log      *applogger.Logger
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewCandlePersister creates a persister for one engine's candle stream.
func NewCandlePersister(candles <-chan models.Candle, symbol string, store drepo.CandleStore, cache drepo.SnapshotCache, src drepo.SnapshotSource, metrics drepo.Metrics, log *applogger.Logger) *CandlePersister {
	return &CandlePersister{
		candles: candles,
		symbol:  symbol,
		store:   store,
		cache:   cache,
		src:     src,
		metrics: metrics,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the drain loop.
func (p *CandlePersister) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case c := <-p.candles:
				p.persist(ctx, c)
			}
		}
	}()
}

// Stop terminates the drain loop.
func (p *CandlePersister) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *CandlePersister) persist(ctx context.Context, c models.Candle) {
	start := time.Now()
	p.metrics.RecordCandleBuilt(p.symbol)

	storeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if p.store != nil {
		if err := p.store.Store(storeCtx, p.symbol, c); err != nil {
			p.metrics.RecordError("candle_store")
			p.log.Error("persist candle", applogger.String("symbol", p.symbol), applogger.Error(err))
		}
	}

	if p.cache != nil {
		if err := p.cache.PutSnapshot(storeCtx, p.src.Snapshot()); err != nil {
			p.metrics.RecordError("snapshot_cache")
			p.log.Warn("cache snapshot", applogger.String("symbol", p.symbol), applogger.Error(err))
		}
	}
	p.metrics.RecordLatency("candle_persist", time.Since(start).Seconds())
}
