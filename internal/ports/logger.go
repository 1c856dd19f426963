package ports

import "context"

// Logger - минимальный контракт логгера для всех слоёв (реализация - pkg/logger на zap).
type Logger interface {
	Infof(ctx context.Context, format string, args ...any)  // Infof - информационные сообщения.
	Warnf(ctx context.Context, format string, args ...any)  // Warnf - предупреждения.
	Errorf(ctx context.Context, format string, args ...any) // Errorf - ошибки.
}
