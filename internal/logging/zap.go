package logging

import (
	"context"
	"io"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// slogToZapLevel maps slog levels to zap levels. Levels between the named
// ones round down.
func slogToZapLevel(level slog.Level) zapcore.Level {
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

// zapHandler implements slog.Handler by wrapping a zap.Logger
type zapHandler struct {
	logger *zap.Logger
}

// NewZapHandler wraps a zap.Logger as a slog.Handler
func NewZapHandler(logger *zap.Logger) slog.Handler {
	return &zapHandler{logger: logger}
}

func (h *zapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Core().Enabled(slogToZapLevel(level))
}

func (h *zapHandler) Handle(_ context.Context, r slog.Record) error {
	ce := h.logger.Check(slogToZapLevel(r.Level), r.Message)
	if ce == nil {
		return nil
	}
	if !r.Time.IsZero() {
		ce.Time = r.Time
	}

	fields := make([]zap.Field, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if f, ok := zapField(a); ok {
			fields = append(fields, f)
		}
		return true
	})
	ce.Write(fields...)
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		if f, ok := zapField(a); ok {
			fields = append(fields, f)
		}
	}
	return &zapHandler{logger: h.logger.With(fields...)}
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &zapHandler{logger: h.logger.With(zap.Namespace(name))}
}

// zapField converts one attribute; empty attributes are dropped
func zapField(a slog.Attr) (zap.Field, bool) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return zap.Field{}, false
	}

	v := a.Value
	switch v.Kind() {
	case slog.KindString:
		return zap.String(a.Key, v.String()), true
	case slog.KindInt64:
		return zap.Int64(a.Key, v.Int64()), true
	case slog.KindUint64:
		return zap.Uint64(a.Key, v.Uint64()), true
	case slog.KindFloat64:
		return zap.Float64(a.Key, v.Float64()), true
	case slog.KindBool:
		return zap.Bool(a.Key, v.Bool()), true
	case slog.KindDuration:
		return zap.Duration(a.Key, v.Duration()), true
	case slog.KindTime:
		return zap.Time(a.Key, v.Time()), true
	case slog.KindGroup:
		group := map[string]any{}
		for _, ga := range v.Group() {
			group[ga.Key] = ga.Value.Resolve().Any()
		}
		if a.Key == "" {
			return zap.Any("group", group), true
		}
		return zap.Any(a.Key, group), true
	default:
		if err, ok := v.Any().(error); ok {
			return zap.NamedError(a.Key, err), true
		}
		return zap.Any(a.Key, v.Any()), true
	}
}

// newZapLogger builds a console logger writing to w
func newZapLogger(level slog.Level, addSource bool, w io.Writer) (*zap.Logger, error) {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(slogToZapLevel(level)),
	)

	var opts []zap.Option
	if addSource {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}
