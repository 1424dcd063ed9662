package shell

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/credential"
)

const (
	// OperationDurationMetric tracks the duration of service operations, retries included.
	OperationDurationMetric = "lending_operation_duration_seconds"
	// OperationCallsMetric counts service operations by outcome.
	OperationCallsMetric = "lending_operation_calls_total"

	// RetriesMetric counts retries, labelled with operation, attempt_number and error_type.
	RetriesMetric = "lending_operation_retries_total"
	// RetryDelayMetric tracks the backoff sleep before each retry.
	RetryDelayMetric = "lending_operation_retry_delay_seconds"
	// MaxRetriesReachedMetric counts operations that gave up while the error was still retryable.
	MaxRetriesReachedMetric = "lending_operation_max_retries_reached_total"

	StatusSuccess             = "success"
	StatusRejected            = "rejected"
	StatusError               = "error"
	StatusCanceled            = "canceled"
	StatusTimeout             = "timeout"
	StatusConcurrencyConflict = "concurrency_conflict"

	LogMsgOperationStarted   = "operation started"
	LogMsgOperationCompleted = "operation completed"
	LogMsgOperationRejected  = "operation rejected"
	LogMsgOperationFailed    = "operation failed"

	LogAttrOperation     = "operation"
	LogAttrStatus        = "status"
	LogAttrDurationMS    = "duration_ms"
	LogAttrRetryAttempts = "retry_attempts"
	LogAttrError         = "error"

	LabelAttemptNumber  = "attempt_number"
	LabelErrorType      = "error_type"
	LabelFinalErrorType = "final_error_type"

	SpanNamePrefix = "lending.operation."
)

// Observability bundles the optional collaborators of a service. Nil members are skipped.
type Observability struct {
	Logger           lending.Logger
	ContextualLogger lending.ContextualLogger
	Metrics          lending.MetricsCollector
	Tracing          lending.TracingCollector
}

// Observation is one running operation, created by Observability.Begin.
type Observation struct {
	observability Observability
	operation     string
	start         time.Time
	span          lending.SpanContext
}

// Begin logs the start of operation and opens a span for it.
func (o Observability) Begin(ctx context.Context, operation string) (context.Context, Observation) {
	observation := Observation{observability: o, operation: operation, start: time.Now()}

	if o.Tracing != nil {
		ctx, observation.span = o.Tracing.StartSpan(ctx, SpanNamePrefix+operation, map[string]string{
			LogAttrOperation: operation,
		})
	}

	o.logDebug(ctx, LogMsgOperationStarted, LogAttrOperation, operation)

	return ctx, observation
}

// End logs, measures and traces the outcome of the operation.
// Business rejections are logged at info level, everything else that failed at error level.
func (ob Observation) End(ctx context.Context, retry RetryMetrics, err error) {
	o := ob.observability
	duration := time.Since(ob.start)
	status := StatusOf(err)

	args := []any{
		LogAttrOperation, ob.operation,
		LogAttrStatus, status,
		LogAttrDurationMS, ToMilliseconds(duration),
		LogAttrRetryAttempts, retry.Attempts,
	}

	switch status {
	case StatusSuccess:
		o.logInfo(ctx, LogMsgOperationCompleted, args...)
	case StatusRejected:
		o.logInfo(ctx, LogMsgOperationRejected, append(args, LogAttrError, err.Error())...)
	default:
		o.logError(ctx, LogMsgOperationFailed, append(args, LogAttrError, err.Error())...)
	}

	labels := map[string]string{LogAttrOperation: ob.operation, LogAttrStatus: status}
	recordDuration(ctx, o.Metrics, OperationDurationMetric, duration, labels)
	incrementCounter(ctx, o.Metrics, OperationCallsMetric, labels)

	if o.Tracing != nil && ob.span != nil {
		attrs := map[string]string{
			LogAttrDurationMS:    strconv.FormatFloat(ToMilliseconds(duration), 'f', 2, 64),
			LogAttrRetryAttempts: strconv.Itoa(retry.Attempts),
		}

		if err != nil {
			attrs[LogAttrError] = err.Error()
		}

		ob.span.SetStatus(status)
		o.Tracing.FinishSpan(ob.span, status, attrs)
	}
}

// StatusOf classifies the outcome of an operation.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, lending.ErrConcurrencyConflict):
		return StatusConcurrencyConflict
	case IsBusinessRejection(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// IsBusinessRejection reports whether err is a rule violation the caller can act on,
// as opposed to an infrastructure failure.
func IsBusinessRejection(err error) bool {
	for _, target := range []error{
		lending.ErrNotFound,
		lending.ErrValidation,
		lending.ErrInvalidTransition,
		lending.ErrMaterialUnavailable,
		lending.ErrReaderNotEligible,
		lending.ErrDuplicateEmail,
		lending.ErrDuplicateEmployeeNumber,
		credential.ErrInvalidCredential,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

func (o Observability) logDebug(ctx context.Context, msg string, args ...any) {
	if o.ContextualLogger != nil {
		o.ContextualLogger.DebugContext(ctx, msg, args...)
	} else if o.Logger != nil {
		o.Logger.Debug(msg, args...)
	}
}

func (o Observability) logInfo(ctx context.Context, msg string, args ...any) {
	if o.ContextualLogger != nil {
		o.ContextualLogger.InfoContext(ctx, msg, args...)
	} else if o.Logger != nil {
		o.Logger.Info(msg, args...)
	}
}

func (o Observability) logError(ctx context.Context, msg string, args ...any) {
	if o.ContextualLogger != nil {
		o.ContextualLogger.ErrorContext(ctx, msg, args...)
	} else if o.Logger != nil {
		o.Logger.Error(msg, args...)
	}
}

func recordDuration(
	ctx context.Context,
	collector lending.MetricsCollector,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	if collector == nil {
		return
	}

	if contextual, ok := collector.(lending.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector lending.MetricsCollector, metric string, labels map[string]string) {
	if collector == nil {
		return
	}

	if contextual, ok := collector.(lending.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}
