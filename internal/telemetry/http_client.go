package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NewInstrumentedTransport wraps base (http.DefaultTransport when nil) so every
// request is traced and carries the W3C trace context
func NewInstrumentedTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(
		base,
		otelhttp.WithSpanOptions(
			trace.WithSpanKind(trace.SpanKindClient),
		),
	)
}

// NewInstrumentedHTTPClient creates an HTTP client with automatic tracing
func NewInstrumentedHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: NewInstrumentedTransport(nil),
	}
}

// RemoteCallAttrs describes one call to the remote data backend
type RemoteCallAttrs struct {
	Backend   string // "rest" or "sql"
	Table     string
	Operation string
	UserID    string
}

// TraceRemoteCall starts a span for a remote data backend call
func TraceRemoteCall(ctx context.Context, attrs RemoteCallAttrs) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("remote.%s", attrs.Operation)
	ctx, span := otel.Tracer("remote").Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("remote.backend", attrs.Backend),
			attribute.String("remote.operation", attrs.Operation),
		),
	)

	if attrs.Table != "" {
		span.SetAttributes(attribute.String("remote.table", attrs.Table))
	}
	if attrs.UserID != "" {
		span.SetAttributes(attribute.String("user.id", attrs.UserID))
	}

	return ctx, span
}

// EndRemoteCall records the outcome on span and ends it
func EndRemoteCall(span trace.Span, statusCode int, err error) {
	defer span.End()

	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return
	}
	span.SetStatus(codes.Ok, "")
}
