package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadPull/internal/domain/models"
)

type fakeCandleStore struct {
	symbol string
	limit  int
	rows   []models.Candle
}

func (f *fakeCandleStore) Store(context.Context, string, models.Candle) error { return nil }

func (f *fakeCandleStore) RecentCandles(context.Context, string, int) ([]models.Candle, error) {
	return nil, nil
}

func (f *fakeCandleStore) Query(_ context.Context, symbol string, _, _ time.Time, limit int) ([]models.Candle, error) {
	f.symbol = symbol
	f.limit = limit
	return f.rows, nil
}

func (f *fakeCandleStore) Health(context.Context) error { return nil }
func (f *fakeCandleStore) Close() error                 { return nil }

// All storage collaborators are optional; queries against a bare use case
// must degrade to empty results rather than dereferencing nil.
func TestQueriesWithoutOptionalStores(t *testing.T) {
	uc := NewMarketQueryUseCase("BTCUSDT", nil, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := uc.GetCandles(ctx, GetCandlesParams{
		From: time.Unix(0, 0),
		To:   time.Unix(3600, 0),
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "BTCUSDT", res.Symbol)
	assert.Zero(t, res.Count)
	assert.Empty(t, res.Candles)

	reports, err := uc.Reports(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)

	assert.Empty(t, uc.Leads())
	assert.Empty(t, uc.Whales(time.Hour))
}

func TestGetCandlesDefaultsAndClamping(t *testing.T) {
	store := &fakeCandleStore{rows: []models.Candle{{Close: 100}, {Close: 101}}}
	uc := NewMarketQueryUseCase("BTCUSDT", nil, store, nil, nil, nil)
	ctx := context.Background()

	res, err := uc.GetCandles(ctx, GetCandlesParams{
		From: time.Unix(0, 0),
		To:   time.Unix(3600, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", store.symbol, "empty symbol falls back to the configured one")
	assert.Equal(t, 1000, store.limit, "zero limit takes the default")
	assert.Equal(t, 2, res.Count)

	_, err = uc.GetCandles(ctx, GetCandlesParams{
		Symbol: "ETHUSDT",
		From:   time.Unix(0, 0),
		To:     time.Unix(3600, 0),
		Limit:  50000,
	})
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", store.symbol)
	assert.Equal(t, 10000, store.limit, "oversized limits are clamped")
}

func TestGetCandlesRejectsInvertedRange(t *testing.T) {
	uc := NewMarketQueryUseCase("BTCUSDT", nil, &fakeCandleStore{}, nil, nil, nil)

	_, err := uc.GetCandles(context.Background(), GetCandlesParams{
		From: time.Unix(3600, 0),
		To:   time.Unix(0, 0),
	})
	assert.Error(t, err)
}
