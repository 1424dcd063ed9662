package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

const (
	ErrorTypeNone                = "none"
	ErrorTypeConcurrencyConflict = "concurrency_conflict"
	ErrorTypeContextCanceled     = "context_canceled"
	ErrorTypeDeadlineExceeded    = "context_deadline_exceeded"
	ErrorTypeOther               = "other"
)

var (
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")
	ErrEmptyOperation      = errors.New("operation must not be empty")
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of a unit of work, typically a whole store transaction.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how an operation got to its final outcome.
type RetryMetrics struct {
	// Attempts counts calls of the RetryableFunc, 1 when the first attempt decided the outcome.
	Attempts int
	// TotalDelay sums the backoff sleeps, excluding execution time.
	TotalDelay    time.Duration
	LastErrorType string
	// RetriesExhausted is true when the last attempt still failed with a retryable error.
	RetriesExhausted bool
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector lending.MetricsCollector
	operation        string
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// RetryWithExponentialBackoff runs fn until it succeeds, fails with a non-retryable error,
// or maxAttempts is reached.
//
// Only lending.ErrConcurrencyConflict is retried. Every attempt runs a fresh transaction
// that re-reads and re-validates, so a retry never hides a lost update.
//
// Default schedule: 0, 10, 20, 40, 80, 160 ms plus up to 30% jitter.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{}, err
		}
	}

	metrics := RetryMetrics{LastErrorType: ErrorTypeNone}
	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(config, attempt)
			config.recordDelay(ctx, attempt, delay)

			select {
			case <-time.After(delay):
				metrics.TotalDelay += delay
			case <-ctx.Done():
				metrics.LastErrorType = ErrorType(ctx.Err())
				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++
		lastErr = fn(ctx)
		metrics.LastErrorType = ErrorType(lastErr)

		if lastErr == nil || !isRetryable(lastErr) {
			return metrics, lastErr
		}

		if attempt < config.maxAttempts-1 {
			config.recordRetry(ctx, attempt+1, lastErr)
		}
	}

	metrics.RetriesExhausted = true
	config.recordExhausted(ctx, lastErr)

	return metrics, lastErr
}

// backoffDelay is baseDelay * 2^(attempt-1) plus jitter.
func backoffDelay(config *retryConfig, attempt int) time.Duration {
	delay := config.baseDelay * time.Duration(1<<(attempt-1))
	jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // jitter needs no crypto randomness

	return delay + time.Duration(jitter)
}

// isRetryable is deliberately narrow: a deadline or a broken connection fails fast.
func isRetryable(err error) bool {
	return errors.Is(err, lending.ErrConcurrencyConflict)
}

// ErrorType maps an error to a low-cardinality metrics label.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ErrorTypeNone
	case errors.Is(err, lending.ErrConcurrencyConflict):
		return ErrorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return ErrorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeDeadlineExceeded
	default:
		return ErrorTypeOther
	}
}

func (c *retryConfig) recordDelay(ctx context.Context, attempt int, delay time.Duration) {
	recordDuration(ctx, c.metricsCollector, RetryDelayMetric, delay, map[string]string{
		LogAttrOperation:   c.operation,
		LabelAttemptNumber: strconv.Itoa(attempt),
	})
}

func (c *retryConfig) recordRetry(ctx context.Context, attempt int, err error) {
	incrementCounter(ctx, c.metricsCollector, RetriesMetric, map[string]string{
		LogAttrOperation:   c.operation,
		LabelAttemptNumber: strconv.Itoa(attempt),
		LabelErrorType:     ErrorType(err),
	})
}

func (c *retryConfig) recordExhausted(ctx context.Context, err error) {
	incrementCounter(ctx, c.metricsCollector, MaxRetriesReachedMetric, map[string]string{
		LogAttrOperation:    c.operation,
		LabelFinalErrorType: ErrorType(err),
	})
}

// WithMaxAttempts sets the total number of attempts, including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the first retry; later delays double.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the random extra delay as a fraction of the backoff delay, 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics records retries, delays and exhaustion labelled with operation.
func WithRetryMetrics(collector lending.MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}
