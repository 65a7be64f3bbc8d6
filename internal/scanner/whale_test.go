package scanner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadPull/internal/domain/models"
	"LeadPull/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSource struct{ s *models.Snapshot }

func (f *fakeSource) Snapshot() *models.Snapshot { return f.s }

type fakeSink struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeSink) PublishReport(context.Context, *models.StageReport) error { return nil }

func (f *fakeSink) Log(msg string, _ models.Severity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, msg)
}

func newTestScanner(t *testing.T, s *models.Snapshot) (*WhaleScanner, *fakeSink, *fakeClock) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	sink := &fakeSink{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	w := New(&fakeSource{s: s}, sink, log, Config{
		ScanInterval: 10 * time.Minute,
		MinValueUSD:  500_000,
		Retention:    time.Hour,
	}, WithClock(clock))
	return w, sink, clock
}

func TestScanFindsWhaleOrders(t *testing.T) {
	s := &models.Snapshot{
		Symbol: "BTCUSDT",
		Bids: []models.PriceLevel{
			{Price: 100_000, Quantity: 6},    // $600k whale bid
			{Price: 99_000, Quantity: 0.5},   // retail
		},
		Asks: []models.PriceLevel{
			{Price: 101_000, Quantity: 5},    // $505k whale ask
			{Price: 100_000, Quantity: 4.99}, // $499k, just below the floor
		},
	}
	w, sink, _ := newTestScanner(t, s)

	found := w.Scan()

	require.Len(t, found, 2)
	assert.Equal(t, SideBuy, found[0].Side)
	assert.Equal(t, 600_000.0, found[0].ValueUSD)
	assert.Equal(t, SideSell, found[1].Side)
	assert.Len(t, sink.lines, 2)
}

func TestScanEmptyBook(t *testing.T) {
	w, sink, _ := newTestScanner(t, &models.Snapshot{Symbol: "BTCUSDT"})

	assert.Empty(t, w.Scan())
	assert.Empty(t, sink.lines)
	assert.Empty(t, w.Recent(time.Hour))
}

func TestRecentWindowAndRetention(t *testing.T) {
	s := &models.Snapshot{
		Symbol: "BTCUSDT",
		Bids:   []models.PriceLevel{{Price: 100_000, Quantity: 6}},
	}
	w, _, clock := newTestScanner(t, s)

	w.Scan()
	clock.advance(30 * time.Minute)
	w.Scan()

	assert.Len(t, w.Recent(time.Hour), 2)
	assert.Len(t, w.Recent(10*time.Minute), 1, "only the fresh sighting is recent")

	// the first sighting falls out of the retention window
	clock.advance(31 * time.Minute)
	w.Scan()
	assert.Len(t, w.Recent(time.Hour), 2)
}
