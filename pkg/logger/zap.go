package logger

import (
	"context"

	"github.com/Gunvolt24/shoecart/pkg/ctxmeta"
	"go.uber.org/zap"
)

// ZapLogger - реализация ports.Logger поверх zap.SugaredLogger.
// request_id/trace_id из контекста добавляются полями записи.
type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	isProd bool
}

// NewZapLogger - production (JSON) или development (console) логгер и функция Sync.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, nil, err
	}

	return wrap(logger, isProd), func() error { return logger.Sync() }, nil
}

// NewNop - логгер, который ничего не пишет (тесты, CLI).
func NewNop() *ZapLogger { return wrap(zap.NewNop(), false) }

func wrap(logger *zap.Logger, isProd bool) *ZapLogger {
	return &ZapLogger{
		base:   logger,
		sugar:  logger.Sugar(),
		isProd: isProd,
	}
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.with(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }

// with - добавляет метаданные запроса, если они есть в контексте.
func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return z.sugar
	}
	var fields []any
	if rid, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", rid)
	}
	if src, ok := ctxmeta.SourceFromContext(ctx); ok {
		fields = append(fields, "source", src)
	}
	if tid, ok := ctxmeta.TraceIDFromContext(ctx); ok {
		fields = append(fields, "trace_id", tid)
	}
	if len(fields) == 0 {
		return z.sugar
	}
	return z.sugar.With(fields...)
}
