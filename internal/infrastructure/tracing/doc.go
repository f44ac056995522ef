/*
Package tracing provides lightweight request tracing.

# Overview

Implements minimal span tracking for requests flowing through the REST
surface, following OpenTelemetry concepts without the dependency weight.
Trace context propagates via X-Trace-ID and X-Span-ID headers.

# Usage

	tracer := tracing.New("blockview", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
