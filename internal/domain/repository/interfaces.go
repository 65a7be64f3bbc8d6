package repository

import (
	"context"
	"time"

	"LeadPull/internal/domain/models"
)

// MarketStream is the inbound trade feed for one instrument. The engine
// depends only on this shape, not on the transport behind it.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan *models.BookUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SnapshotSource is the always-succeeding point-in-time market query the
// orchestrator and any external monitor consume.
type SnapshotSource interface {
	Snapshot() *models.Snapshot
}

// ReportSink receives stage reports and human-readable status lines. The
// core does not know how they are displayed or stored.
type ReportSink interface {
	PublishReport(ctx context.Context, r *models.StageReport) error
	Log(msg string, sev models.Severity)
}

// CandleStore persists finalized candles and serves history queries.
type CandleStore interface {
	Store(ctx context.Context, symbol string, c models.Candle) error
	RecentCandles(ctx context.Context, symbol string, limit int) ([]models.Candle, error)
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// ReportStore archives stage reports consumed back off the report topic.
type ReportStore interface {
	Store(ctx context.Context, symbol string, r *models.StageReport) error
	Close() error
}

// SnapshotCache holds the latest snapshot and stage reports for the HTTP
// query surface.
type SnapshotCache interface {
	PutSnapshot(ctx context.Context, s *models.Snapshot) error
	GetSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error)
	PutReport(ctx context.Context, r *models.StageReport) error
	LatestReports(ctx context.Context, symbol string) ([]*models.StageReport, error)
}

// Metrics is the instrumentation surface.
type Metrics interface {
	RecordTradeIngested(symbol string)
	RecordCandleBuilt(symbol string)
	RecordLastPrice(symbol string, price float64)
	RecordStageEvaluation(stage string, passed bool, points float64)
	RecordLeadTransition(chain, phase string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
