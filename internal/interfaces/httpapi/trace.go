package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("fivesquad/internal/interfaces/httpapi")

// startSpan opens a handler span under the otelhttp server span.
// Requests on filtered routes (e.g. /healthz) carry no valid parent, so
// the noop parent span is returned and nothing new is recorded.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, parent
	}
	return apiTracer.Start(ctx, name)
}

// Only top-level handler entry points get their own span; middleware
// and helpers stay events on the handler span.
func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
