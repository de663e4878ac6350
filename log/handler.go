package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// formatterHandler adapts a LogFormatter to slog.Handler, so the CLI's
// --log-format flag can select between TextFormatter, JSONFormatter, and
// ColorFormatter while every caller still goes through the ordinary
// Logger API.
type formatterHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	formatter LogFormatter
	level     slog.Leveler
	attrs     map[string]interface{}
}

// NewWithFormatter creates a Logger that renders through formatter (one
// of TextFormatter, JSONFormatter, ColorFormatter) instead of slog's
// built-in handlers.
func NewWithFormatter(level slog.Level, formatter LogFormatter, w io.Writer) *Logger {
	h := &formatterHandler{
		mu:        &sync.Mutex{},
		w:         w,
		formatter: formatter,
		level:     level,
		attrs:     map[string]interface{}{},
	}
	return &Logger{inner: slog.New(h)}
}

func (h *formatterHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *formatterHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	entry := LogEntry{
		Timestamp: r.Time,
		Level:     slogLevelToLogLevel(r.Level),
		Message:   r.Message,
		Fields:    fields,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, h.formatter.Format(entry))
	return err
}

func (h *formatterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &formatterHandler{mu: h.mu, w: h.w, formatter: h.formatter, level: h.level, attrs: map[string]interface{}{}}
	for k, v := range h.attrs {
		next.attrs[k] = v
	}
	for _, a := range attrs {
		next.attrs[a.Key] = a.Value.Any()
	}
	return next
}

func (h *formatterHandler) WithGroup(name string) slog.Handler {
	// Groups are not meaningful to a flat LogEntry.Fields map; fold group
	// attrs in unprefixed rather than dropping them.
	return h
}

func slogLevelToLogLevel(l slog.Level) LogLevel {
	switch {
	case l < slog.LevelInfo:
		return DEBUG
	case l < slog.LevelWarn:
		return INFO
	case l < slog.LevelError:
		return WARN
	default:
		return ERROR
	}
}
