package observe

import (
	"context"
	"io"
	"sort"

	charmlog "github.com/charmbracelet/log"
)

// textLogger renders entries for humans using charmbracelet/log.
type textLogger struct {
	logger *charmlog.Logger
}

// NewTextLogger creates a human-readable logger. Timestamps are formatted as
// "HH:MM:SS.ms".
func NewTextLogger(level string, w io.Writer) Logger {
	return &textLogger{
		logger: charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           charmLevel(ParseLogLevel(level)),
		}),
	}
}

// TextLoggerFrom adapts an existing charmbracelet logger.
func TextLoggerFrom(l *charmlog.Logger) Logger {
	return &textLogger{logger: l}
}

func charmLevel(l LogLevel) charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func (l *textLogger) WithRequest(meta RequestMeta) Logger {
	return &textLogger{logger: l.logger.With(keyvals(requestAttrs(meta))...)}
}

func (l *textLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.logger.Info(msg, l.keyvals(ctx, fields)...)
}

func (l *textLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.logger.Warn(msg, l.keyvals(ctx, fields)...)
}

func (l *textLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.logger.Error(msg, l.keyvals(ctx, fields)...)
}

func (l *textLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.logger.Debug(msg, l.keyvals(ctx, fields)...)
}

func (l *textLogger) keyvals(ctx context.Context, fields []Field) []any {
	var kv []any
	if meta, ok := RequestFromContext(ctx); ok {
		kv = keyvals(requestAttrs(meta))
	}
	for _, f := range fields {
		kv = append(kv, f.Key, fieldValue(f))
	}
	return kv
}

// keyvals flattens attrs in key order so output is stable.
func keyvals(attrs map[string]any) []any {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, attrs[k])
	}
	return kv
}

var _ Logger = (*textLogger)(nil)
