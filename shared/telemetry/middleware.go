package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HTTPMiddleware traces each request and records request count and latency.
// The route pattern, not the raw path, is used as the span name so that ids
// do not explode metric cardinality.
func HTTPMiddleware(tel *Telemetry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithTelemetry(r.Context(), tel)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			ctx, span := tel.StartSpan(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
			next.ServeHTTP(recorder, r.WithContext(ctx))

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", pattern),
				attribute.Int("http.status_code", recorder.status),
			}
			span.SetAttributes(attrs...)
			if recorder.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, fmt.Sprintf("status %d", recorder.status))
			}
			span.End()

			RecordCounter(ctx, "http_requests_total", "Total HTTP requests", 1, attrs...)
			RecordHistogram(ctx, "http_request_duration_seconds", "HTTP request latency", time.Since(start).Seconds(), attrs...)
		})
	}
}
