// Package tracing wraps the global OTel tracer for domain packages.
//
// Without a registered TracerProvider the global no-op provider is used, so
// spans cost nothing in tests and in local runs.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "zerovacancy"

// Start opens a child span of the span in ctx. Callers must End the span.
//
//	ctx, span := tracing.Start(ctx, "waitlist.join",
//	    attribute.String("zerovacancy.waitlist.source", req.Source),
//	)
//	defer span.End()
func Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// Fail records err on span and marks it as errored. A nil err is a no-op.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
