package repository

import (
	"context"
	"time"

	"LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
	pkgkafka "LeadPull/pkg/kafka"
)

// KafkaReportSink implements ReportSink over the Kafka report and terminal
// topics. Reports are keyed by stage so per-stage ordering survives
// partitioning.
type KafkaReportSink struct {
	producer    *pkgkafka.Producer
	symbol      string
	reportTopic string
	logTopic    string
}

// NewKafkaReportSink creates a Kafka-backed report sink.
func NewKafkaReportSink(producer *pkgkafka.Producer, symbol, reportTopic, logTopic string) domrepo.ReportSink {
	return &KafkaReportSink{
		producer:    producer,
		symbol:      symbol,
		reportTopic: reportTopic,
		logTopic:    logTopic,
	}
}

func (s *KafkaReportSink) PublishReport(ctx context.Context, r *models.StageReport) error {
	return s.producer.Publish(ctx, s.reportTopic, []byte(r.Stage), map[string]interface{}{
		"symbol": s.symbol,
		"report": r,
	})
}

// Log emits a terminal line. Failures are swallowed: the status feed is
// best-effort and must never stall an evaluation.
func (s *KafkaReportSink) Log(msg string, sev models.Severity) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.producer.Publish(ctx, s.logTopic, []byte(s.symbol), map[string]interface{}{
		"symbol":  s.symbol,
		"message": msg,
		"color":   string(sev),
		"ts":      time.Now().UnixMilli(),
	})
}

// Close closes the underlying producer.
func (s *KafkaReportSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
