package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "feedbackd"

// Metrics holds all feedbackd metric instruments.
type Metrics struct {
	FeedbackCreated metric.Int64Counter
	FeedbackDeleted metric.Int64Counter
	Exports         metric.Int64Counter
	SharesOpened    metric.Int64Counter
	SharesDelivered metric.Int64Counter
	AnalysisLoads   metric.Int64Counter
	ExportDuration  metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.FeedbackCreated, err = meter.Int64Counter("feedbackd.feedback.created",
		metric.WithDescription("Number of feedback records ingested"))
	if err != nil {
		return nil, err
	}

	m.FeedbackDeleted, err = meter.Int64Counter("feedbackd.feedback.deleted",
		metric.WithDescription("Number of feedback records deleted"))
	if err != nil {
		return nil, err
	}

	m.Exports, err = meter.Int64Counter("feedbackd.exports",
		metric.WithDescription("Number of export artifacts built"))
	if err != nil {
		return nil, err
	}

	m.SharesOpened, err = meter.Int64Counter("feedbackd.shares.opened",
		metric.WithDescription("Number of share sessions opened"))
	if err != nil {
		return nil, err
	}

	m.SharesDelivered, err = meter.Int64Counter("feedbackd.shares.delivered",
		metric.WithDescription("Number of share payloads delivered"))
	if err != nil {
		return nil, err
	}

	m.AnalysisLoads, err = meter.Int64Counter("feedbackd.analysis.loads",
		metric.WithDescription("Number of analysis snapshot loads and refreshes"))
	if err != nil {
		return nil, err
	}

	m.ExportDuration, err = meter.Float64Histogram("feedbackd.export.duration_seconds",
		metric.WithDescription("Export build duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
