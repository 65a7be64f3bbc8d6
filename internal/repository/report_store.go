package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"LeadPull/internal/domain/models"
	pkgch "LeadPull/pkg/clickhouse"
	applogger "LeadPull/pkg/logger"
)

const reportTable = "leadpull.stage_reports"

// CHReportStore archives questionnaire reports consumed off the report
// topic into ClickHouse.
type CHReportStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHReportStore(ch *pkgch.Client) *CHReportStore {
	return &CHReportStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHReportStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHReportStore) Store(ctx context.Context, symbol string, r *models.StageReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	const q = `INSERT INTO ` + reportTable + `
        (ts, symbol, stage, status, severity, total_points, passed, trigger_next, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		time.UnixMilli(r.Timestamp),
		symbol,
		r.Stage,
		r.Status,
		string(r.Severity),
		r.TotalPoints,
		boolToUInt8(r.Passed),
		boolToUInt8(r.TriggerNext),
		string(payload),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_report error",
				applogger.String("symbol", symbol),
				applogger.String("stage", r.Stage),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

func (s *CHReportStore) Close() error {
	return nil // pool is managed by pkg/clickhouse
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Schema returns the idempotent DDL for every table this package writes,
// applied once at startup through the ClickHouse client.
func Schema() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS leadpull`,
		`CREATE TABLE IF NOT EXISTS ` + candleTable + ` (
            bucket DateTime,
            symbol LowCardinality(String),
            close  Float64,
            vol    Float64,
            cvd    Float64
        ) ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(bucket)
        ORDER BY (symbol, bucket)`,
		`CREATE TABLE IF NOT EXISTS ` + reportTable + ` (
            ts           DateTime64(3),
            symbol       LowCardinality(String),
            stage        LowCardinality(String),
            status       String,
            severity     String,
            total_points Float64,
            passed       UInt8,
            trigger_next UInt8,
            payload      String
        ) ENGINE = MergeTree
        PARTITION BY toYYYYMM(ts)
        ORDER BY (symbol, stage, ts)`,
	}
}
