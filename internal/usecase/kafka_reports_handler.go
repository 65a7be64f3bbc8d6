package usecase

import (
	"context"
	"encoding/json"
	"time"

	"LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
	pkgkafka "LeadPull/pkg/kafka"
)

// KafkaReportsHandler consumes stage reports off the report topic and
// archives them: the ClickHouse report table for history, the Redis cache
// for the query surface.
type KafkaReportsHandler struct {
	topic   string
	store   domrepo.ReportStore
	cache   domrepo.SnapshotCache
	metrics domrepo.Metrics
}

func NewKafkaReportsHandler(topic string, store domrepo.ReportStore, cache domrepo.SnapshotCache, metrics domrepo.Metrics) *KafkaReportsHandler {
	return &KafkaReportsHandler{topic: topic, store: store, cache: cache, metrics: metrics}
}

func (h *KafkaReportsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, report}
func (h *KafkaReportsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string              `json:"symbol"`
		Report *models.StageReport `json:"report"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.Report == nil {
		h.metrics.RecordError("consumer_empty_report")
		return nil // nothing to archive; do not retry
	}

	// E2E latency from evaluation time to archival (approx)
	h.metrics.RecordLatency("report_e2e_seconds", time.Since(time.UnixMilli(m.Report.Timestamp)).Seconds())

	start := time.Now()
	if err := h.store.Store(ctx, m.Symbol, m.Report); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("report_insert_seconds", time.Since(start).Seconds())

	if h.cache != nil {
		if err := h.cache.PutReport(ctx, m.Report); err != nil {
			h.metrics.RecordError("consumer_cache")
			// cache is a convenience view; archival already succeeded
		}
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaReportsHandler)(nil)
