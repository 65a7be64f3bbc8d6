package usecase

import (
	"context"
	"fmt"
	"time"

	"LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
	"LeadPull/internal/orchestrator"
	"LeadPull/internal/scanner"
)

// MarketQueryUseCase serves the read-only HTTP surface: snapshots, candle
// history, stage reports, lead chain state and whale sightings.
type MarketQueryUseCase struct {
	symbol string
	src    domrepo.SnapshotSource
	store  domrepo.CandleStore
	cache  domrepo.SnapshotCache
	leads  *orchestrator.Orchestrator
	whales *scanner.WhaleScanner
}

func NewMarketQueryUseCase(symbol string, src domrepo.SnapshotSource, store domrepo.CandleStore, cache domrepo.SnapshotCache, leads *orchestrator.Orchestrator, whales *scanner.WhaleScanner) *MarketQueryUseCase {
	return &MarketQueryUseCase{
		symbol: symbol,
		src:    src,
		store:  store,
		cache:  cache,
		leads:  leads,
		whales: whales,
	}
}

// Snapshot returns the live market projection.
func (uc *MarketQueryUseCase) Snapshot(ctx context.Context) *models.Snapshot {
	return uc.src.Snapshot()
}

type GetCandlesParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetCandlesResult struct {
	Symbol  string          `json:"symbol"`
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Count   int             `json:"count"`
	Candles []models.Candle `json:"candles"`
}

func (uc *MarketQueryUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		p.Symbol = uc.symbol
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	// history storage is optional; without it the endpoint serves an
	// empty window instead of failing
	if uc.store == nil {
		return &GetCandlesResult{Symbol: p.Symbol, From: p.From, To: p.To}, nil
	}

	candles, err := uc.store.Query(ctx, p.Symbol, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}

	return &GetCandlesResult{
		Symbol:  p.Symbol,
		From:    p.From,
		To:      p.To,
		Count:   len(candles),
		Candles: candles,
	}, nil
}

// Reports returns the recent stage reports, newest first.
func (uc *MarketQueryUseCase) Reports(ctx context.Context) ([]*models.StageReport, error) {
	if uc.cache == nil {
		return nil, nil
	}
	reports, err := uc.cache.LatestReports(ctx, uc.symbol)
	if err != nil {
		return nil, fmt.Errorf("latest reports: %w", err)
	}
	return reports, nil
}

// Leads returns the current lead chain records.
func (uc *MarketQueryUseCase) Leads() []models.LeadState {
	if uc.leads == nil {
		return nil
	}
	return uc.leads.Chains()
}

// Whales returns whale sightings from the last d.
func (uc *MarketQueryUseCase) Whales(d time.Duration) []models.WhaleOrder {
	if uc.whales == nil {
		return nil
	}
	return uc.whales.Recent(d)
}
