package repository

import (
	"context"

	"LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
	applogger "LeadPull/pkg/logger"
)

// LogReportSink writes reports and status lines to the process log. It is
// the sink used when Kafka is disabled, so evaluations always have
// somewhere to land.
type LogReportSink struct {
	log    *applogger.Logger
	symbol string
}

// NewLogReportSink creates a log-backed report sink.
func NewLogReportSink(log *applogger.Logger, symbol string) domrepo.ReportSink {
	return &LogReportSink{log: log, symbol: symbol}
}

func (s *LogReportSink) PublishReport(ctx context.Context, r *models.StageReport) error {
	s.log.Info("stage report",
		applogger.String("symbol", s.symbol),
		applogger.String("stage", r.Stage),
		applogger.String("status", r.Status),
		applogger.Bool("passed", r.Passed),
		applogger.Any("points", r.TotalPoints),
	)
	return nil
}

func (s *LogReportSink) Log(msg string, sev models.Severity) {
	switch sev {
	case models.SeverityError:
		s.log.Error(msg, applogger.String("color", string(sev)))
	case models.SeverityWarn:
		s.log.Warn(msg, applogger.String("color", string(sev)))
	default:
		s.log.Info(msg, applogger.String("color", string(sev)))
	}
}
