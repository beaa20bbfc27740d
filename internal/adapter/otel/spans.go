package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskrelay"

// StartRelaySpan starts the span covering one webhook event.
func StartRelaySpan(ctx context.Context, taskID, eventType string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "relay",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("event.type", eventType),
		),
	)
}

// StartUpstreamSpan starts a span for one outbound API operation.
func StartUpstreamSpan(ctx context.Context, api, op string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, api+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.api", api)),
	)
}

// EndSpan records err on span, when non-nil, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
