package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"LeadPull/internal/domain/models"
	pkgch "LeadPull/pkg/clickhouse"
	applogger "LeadPull/pkg/logger"
)

const candleTable = "leadpull.candles_5m"

// CHCandleStore implements CandleStore backed by ClickHouse.
type CHCandleStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleStore) Store(ctx context.Context, symbol string, c models.Candle) error {
	const q = `INSERT INTO ` + candleTable + ` (bucket, symbol, close, vol, cvd) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, time.Unix(c.Bucket, 0), symbol, c.Close, c.Volume, c.CVD); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_candle error",
				applogger.String("symbol", symbol),
				applogger.Int64("bucket", c.Bucket),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store candle: %w", err)
	}
	return nil
}

// RecentCandles returns the latest n candles, oldest first, for warm-starting
// the aggregation engine.
func (s *CHCandleStore) RecentCandles(ctx context.Context, symbol string, limit int) ([]models.Candle, error) {
	start := time.Now()
	const q = `
        SELECT bucket, close, vol, cvd
        FROM ` + candleTable + `
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_candles query error",
				applogger.String("symbol", symbol),
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("recent candles: %w", err)
	}
	defer rows.Close()

	tmp, err := scanCandles(rows, limit)
	if err != nil {
		return nil, err
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse recent_candles ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHCandleStore) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Candle, error) {
	const q = `
        SELECT bucket, close, vol, cvd
        FROM ` + candleTable + `
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query_candles error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()
	return scanCandles(rows, limit)
}

func scanCandles(rows *sql.Rows, hint int) ([]models.Candle, error) {
	if hint <= 0 {
		hint = 128
	}
	out := make([]models.Candle, 0, hint)
	for rows.Next() {
		var (
			c  models.Candle
			ts time.Time
		)
		if err := rows.Scan(&ts, &c.Close, &c.Volume, &c.CVD); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Bucket = ts.Unix()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHCandleStore) Close() error {
	return nil // pool is managed by pkg/clickhouse
}
