package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	slogseq "github.com/sokkalf/slog-seq"

	"github.com/leengari/tdsmeta/internal/config"
)

// multiHandler forwards log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// Enable if any handler is enabled for this level
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// ParseLevel maps a configured level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// SetupLogger builds the logger described by cfg and returns a cleanup
// function that flushes buffered records
func SetupLogger(cfg config.Logging) (*slog.Logger, func(), error) {
	return setupLogger(cfg, os.Stdout)
}

func setupLogger(cfg config.Logging, w io.Writer) (*slog.Logger, func(), error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var console slog.Handler
	cleanup := []func(){}

	switch cfg.Backend {
	case config.BackendZap:
		zl, err := newZapLogger(level, cfg.AddSource, w)
		if err != nil {
			return nil, nil, fmt.Errorf("build zap logger: %w", err)
		}
		console = NewZapHandler(zl)
		cleanup = append(cleanup, func() { _ = zl.Sync() })
	default:
		console = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	}

	closeFn := func() {
		for _, fn := range cleanup {
			fn()
		}
	}

	if cfg.SeqURL == "" {
		return slog.New(console), closeFn, nil
	}

	_, seqHandler := slogseq.NewLogger(
		cfg.SeqURL,
		slogseq.WithBatchSize(1),
		slogseq.WithFlushInterval(500*time.Millisecond),
		slogseq.WithHandlerOptions(&slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		}),
	)

	// If Seq is not available, use console only
	if seqHandler == nil {
		return slog.New(console), closeFn, nil
	}

	multi := &multiHandler{
		handlers: []slog.Handler{console, seqHandler},
	}
	cleanup = append(cleanup, func() { seqHandler.Close() })

	return slog.New(multi), closeFn, nil
}
