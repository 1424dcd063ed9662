package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures records for assertions.
type LogHandlerSpy struct {
	mu          sync.Mutex
	records     []slog.Record
	logToStdout bool
}

// NewLogHandlerSpy creates a LogHandlerSpy; logToStdout additionally prints every record as JSON,
// which helps when debugging a test.
func NewLogHandlerSpy(logToStdout bool) *LogHandlerSpy {
	return &LogHandlerSpy{logToStdout: logToStdout}
}

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record.Clone())

	if s.logToStdout {
		_ = slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

func (s *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (s *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return s
}

func (s *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return s
}

// Logger returns a *slog.Logger writing into the spy.
func (s *LogHandlerSpy) Logger() *slog.Logger {
	return slog.New(s)
}

func (s *LogHandlerSpy) GetRecords() []slog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]slog.Record, len(s.records))
	copy(records, s.records)

	return records
}

func (s *LogHandlerSpy) HasDebugLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.find(slog.LevelDebug, message)
}

func (s *LogHandlerSpy) HasInfoLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.find(slog.LevelInfo, message)
}

func (s *LogHandlerSpy) HasWarnLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.find(slog.LevelWarn, message)
}

func (s *LogHandlerSpy) HasErrorLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.find(slog.LevelError, message)
}

func (s *LogHandlerSpy) find(level slog.Level, message string) *SpyLogRecordMatcher {
	matcher := &SpyLogRecordMatcher{}

	for _, record := range s.GetRecords() {
		if record.Level == level && record.Message == message {
			matcher.candidates = append(matcher.candidates, record)
		}
	}

	return matcher
}

// SpyLogRecordMatcher narrows down the records with a given level and message.
// Assert succeeds if at least one record satisfies every condition of the chain.
type SpyLogRecordMatcher struct {
	candidates []slog.Record
}

// WithDurationMS keeps records carrying a non-negative numeric duration_ms attribute.
func (m *SpyLogRecordMatcher) WithDurationMS() *SpyLogRecordMatcher {
	return m.filter("duration_ms", func(v slog.Value) bool {
		switch v.Kind() {
		case slog.KindFloat64:
			return v.Float64() >= 0
		case slog.KindInt64:
			return v.Int64() >= 0
		default:
			return false
		}
	})
}

// WithAttr keeps records carrying key with the given string representation.
func (m *SpyLogRecordMatcher) WithAttr(key string, value string) *SpyLogRecordMatcher {
	return m.filter(key, func(v slog.Value) bool {
		return v.String() == value
	})
}

// WithAttrKey keeps records carrying key, whatever its value.
func (m *SpyLogRecordMatcher) WithAttrKey(key string) *SpyLogRecordMatcher {
	return m.filter(key, func(slog.Value) bool { return true })
}

func (m *SpyLogRecordMatcher) filter(key string, accept func(slog.Value) bool) *SpyLogRecordMatcher {
	kept := make([]slog.Record, 0, len(m.candidates))

	for _, record := range m.candidates {
		found := false
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == key && accept(attr.Value) {
				found = true
				return false
			}

			return true
		})

		if found {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

func (m *SpyLogRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}

// Count returns how many records are still matching.
func (m *SpyLogRecordMatcher) Count() int {
	return len(m.candidates)
}
