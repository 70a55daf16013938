package logging

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewSlog wraps the zap-backed Logger into a *slog.Logger so packages built
// against the standard structured-logging API share one sink.
func NewSlog(l *Logger) *slog.Logger {
	if l == nil {
		l = Default()
	}
	return slog.New(&slogBridge{zap: l.Zap()})
}

type slogBridge struct {
	zap   *zap.Logger
	attrs []zap.Field
}

func (h *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return h.zap.Core().Enabled(zapLevel(level))
}

func (h *slogBridge) Handle(ctx context.Context, record slog.Record) error {
	fields := make([]zap.Field, 0, len(h.attrs)+record.NumAttrs()+2)
	fields = append(fields, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, attrToField(attr))
		return true
	})
	if ctx != nil {
		fields = append(fields, traceFields(ctx)...)
	}

	if ce := h.zap.Check(zapLevel(record.Level), record.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]zap.Field, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, attr := range attrs {
		merged = append(merged, attrToField(attr))
	}
	return &slogBridge{zap: h.zap, attrs: merged}
}

func (h *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogBridge{zap: h.zap.With(zap.Namespace(name)), attrs: h.attrs}
}

func attrToField(attr slog.Attr) zap.Field {
	value := attr.Value.Resolve()
	if err, ok := value.Any().(error); ok {
		return zap.NamedError(attr.Key, err)
	}
	return zap.Any(attr.Key, value.Any())
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
