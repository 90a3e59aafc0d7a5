package observe

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"sync"
	"time"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// NewLoggerFromConfig builds the Logger described by cfg. A disabled config
// yields a no-op logger.
func NewLoggerFromConfig(cfg LoggingConfig) Logger {
	if !cfg.Enabled {
		return NopLogger()
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	if cfg.Format == "text" {
		return NewTextLogger(cfg.Level, w)
	}
	return NewLoggerWithWriter(cfg.Level, w)
}

// structuredLogger is a JSON lines logger.
type structuredLogger struct {
	level     LogLevel
	writer    io.Writer
	mu        *sync.Mutex
	baseAttrs map[string]any
}

// NewLogger creates a JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a JSON logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &structuredLogger{
		level:     ParseLogLevel(level),
		writer:    w,
		mu:        &sync.Mutex{},
		baseAttrs: make(map[string]any),
	}
}

// WithRequest returns a logger with request context attached. Derived
// loggers share the writer lock of their parent.
func (l *structuredLogger) WithRequest(meta RequestMeta) Logger {
	attrs := maps.Clone(l.baseAttrs)
	maps.Copy(attrs, requestAttrs(meta))

	return &structuredLogger{
		level:     l.level,
		writer:    l.writer,
		mu:        l.mu,
		baseAttrs: attrs,
	}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelInfo, msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelWarn, msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelError, msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelDebug, msg, fields)
}

func (l *structuredLogger) log(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.baseAttrs)+len(fields)+8)
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	if meta, ok := RequestFromContext(ctx); ok {
		maps.Copy(entry, requestAttrs(meta))
	}
	maps.Copy(entry, l.baseAttrs)

	for _, f := range fields {
		entry[f.Key] = fieldValue(f)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return // Silently drop malformed log entries
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.writer.Write(data)
}

// requestAttrs flattens the non-empty fields of meta.
func requestAttrs(meta RequestMeta) map[string]any {
	attrs := make(map[string]any, 5)
	if meta.ID != "" {
		attrs["request.id"] = meta.ID
	}
	if meta.Method != "" {
		attrs["http.method"] = meta.Method
	}
	if meta.Endpoint != "" {
		attrs["upstream.endpoint"] = meta.Endpoint
	}
	if meta.Server != "" {
		attrs["upstream.server"] = meta.Server
	}
	if meta.Release != "" {
		attrs["upstream.release"] = meta.Release
	}
	return attrs
}

// fieldValue applies redaction and makes errors and durations printable.
func fieldValue(f Field) any {
	if isRedactedField(f.Key) {
		return "[REDACTED]"
	}
	switch v := f.Value.(type) {
	case error:
		return v.Error()
	case time.Duration:
		return v.String()
	default:
		return v
	}
}

var _ Logger = (*structuredLogger)(nil)
