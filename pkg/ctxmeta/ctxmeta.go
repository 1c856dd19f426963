// Пакет ctxmeta - нейтральный слой для метаданных запроса в context.Context
// (request_id, источник команды корзины, trace/span). HTTP-слой, Kafka-консьюмер
// и логгер зависят от него, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	KeyRequestID ctxKey = "request_id"
	KeySource    ctxKey = "source"
)

// Источники команд корзины.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// WithRequestID кладёт request_id в контекст (если пусто - ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyRequestID)
}

// WithSource помечает, откуда пришла операция над корзиной (http|kafka).
func WithSource(ctx context.Context, source string) context.Context {
	return withString(ctx, KeySource, source)
}

// SourceFromContext - источник операции; пустой, если не задан.
func SourceFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeySource)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil || value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
