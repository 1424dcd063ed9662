package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

// NewSlogBridgeLogger returns a slog.Logger that sends every record to the global
// OpenTelemetry LoggerProvider, with trace correlation, and also to each of the local handlers.
func NewSlogBridgeLogger(name string, local ...slog.Handler) *slog.Logger {
	handlers := append([]slog.Handler{otelslog.NewHandler(name)}, local...)

	return slog.New(fanoutHandler(handlers))
}

type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (f fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}

	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}

	return next
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}

	return next
}

// Logger implements lending.ContextualLogger on the OpenTelemetry log API directly.
// Arguments are slog-style key/value pairs; values are rendered as strings.
type Logger struct {
	logger log.Logger
}

func NewLogger(logger log.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args)
}

func (l *Logger) emit(ctx context.Context, severity log.Severity, msg string, args []any) {
	var record log.Record
	record.SetSeverity(severity)
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		record.AddAttributes(log.String(key, stringValue(args[i+1])))
	}

	l.logger.Emit(ctx, record)
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return slog.AnyValue(v).String()
}

var (
	_ lending.ContextualLogger = (*Logger)(nil)
	_ lending.ContextualLogger = (*slog.Logger)(nil)
)
