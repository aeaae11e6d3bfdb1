package monitoring

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "attendance-server"

// Tracer returns a noop tracer until a TracerProvider is registered.
var Tracer = otel.Tracer(tracerName)

// StartAttendanceSpan starts a span for one attendance operation, tagged with
// the staff member and partition date.
func StartAttendanceSpan(ctx context.Context, spanName, staffID, date string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, spanName,
		trace.WithAttributes(
			attribute.String("attendance.staff_id", staffID),
			attribute.String("attendance.date", date),
		),
	)
}

func StartChildSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, spanName)
}

// RecordSpanError marks span as failed. No-op for a nil err.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
