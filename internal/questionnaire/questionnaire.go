// Package questionnaire composes the scoring evaluators into the staged
// rule pipeline: Q2 surveys the market, Q1/Q3 confirm a generated lead,
// Q4 verifies efficiency and Q5 emits the final advisory. Every stage is a
// pure function of one snapshot: re-evaluating the same snapshot yields an
// identical report.
package questionnaire

import (
	"LeadPull/internal/domain/models"
	"LeadPull/internal/scoring"
)

// Stage names.
const (
	StageQ1 = "Q1"
	StageQ2 = "Q2"
	StageQ3 = "Q3"
	StageQ4 = "Q4"
	StageQ5 = "Q5"
)

// StatusError is the status line of a report synthesized from a recovered
// evaluation fault.
const StatusError = "Error"

// run evaluates a stage, converting an evaluator panic into a zero-point
// failed report so a buggy metric degrades a chain instead of stalling it.
func run(stage string, taken int64, fn func() *models.StageReport) (r *models.StageReport) {
	defer func() {
		if rec := recover(); rec != nil {
			r = &models.StageReport{
				Stage:     stage,
				Status:    StatusError,
				Severity:  models.SeverityError,
				Metrics:   map[string]models.MetricResult{},
				Timestamp: taken,
			}
		}
	}()
	return fn()
}

// direction passes through an explicit direction, defaulting to buying the
// way the survey arms chains today.
func direction(dir scoring.Direction) scoring.Direction {
	if dir == scoring.Selling {
		return scoring.Selling
	}
	return scoring.Buying
}
