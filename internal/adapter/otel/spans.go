package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "feedbackd"

// StartExportSpan starts a span for an export build.
func StartExportSpan(ctx context.Context, records int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "export",
		trace.WithAttributes(attribute.Int("export.records", records)),
	)
}

// StartShareSpan starts a span for a share session.
func StartShareSpan(ctx context.Context, shareID string, records int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "share",
		trace.WithAttributes(
			attribute.String("share.id", shareID),
			attribute.Int("share.records", records),
		),
	)
}

// StartRefreshSpan starts a span for an analysis snapshot refresh.
func StartRefreshSpan(ctx context.Context, sessionID string, generation uint64) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "analysis.refresh",
		trace.WithAttributes(
			attribute.String("analysis.session_id", sessionID),
			attribute.Int64("analysis.generation", int64(generation)),
		),
	)
}
