package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceIDFromContext - trace_id активного спана (если трейсинг выключен, спан невалиден).
func TraceIDFromContext(ctx context.Context) (string, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.TraceID().String(), true
}

func SpanIDFromContext(ctx context.Context) (string, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}
