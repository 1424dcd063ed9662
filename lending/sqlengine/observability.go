package sqlengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

const (
	metricQueryDuration        = "lending_store_query_duration_seconds"
	metricTransactionDuration  = "lending_store_transaction_duration_seconds"
	metricConcurrencyConflicts = "lending_store_concurrency_conflicts_total"
	metricDatabaseErrors       = "lending_store_database_errors_total"
	spanNameTransaction        = "lending.store."
	spanAttrOperation          = "operation"
	spanAttrErrorType          = "error_type"
	spanAttrDurationMS         = "duration_ms"
	labelStatus                = "status"
	statusSuccess              = "success"
	statusError                = "error"
	errorTypeConflict          = "concurrency_conflict"
	errorTypeNotFound          = "not_found"
	errorTypeConstraint        = "constraint_violation"
	errorTypeCanceled          = "context_canceled"
	errorTypeTimeout           = "context_deadline_exceeded"
	errorTypeDatabase          = "database_error"
	errorTypeDomain            = "domain_error"
)

func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	s.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
}

func (s *Store) logDebug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s *Store) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return strconv.FormatFloat(toMilliseconds(d), 'f', 3, 64)
}

// errorType maps an error to a low-cardinality label.
func errorType(err error) string {
	switch {
	case errors.Is(err, lending.ErrConcurrencyConflict):
		return errorTypeConflict
	case errors.Is(err, lending.ErrNotFound):
		return errorTypeNotFound
	case errors.Is(err, lending.ErrMaterialUnavailable),
		errors.Is(err, lending.ErrDuplicateEmail),
		errors.Is(err, lending.ErrDuplicateEmployeeNumber):
		return errorTypeConstraint
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	case errors.Is(err, lending.ErrValidation),
		errors.Is(err, lending.ErrInvalidTransition),
		errors.Is(err, lending.ErrReaderNotEligible),
		errors.Is(err, ErrReadOnlyTransaction):
		return errorTypeDomain
	default:
		return errorTypeDatabase
	}
}

func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextual, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextual, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// recordQuery records the duration of one statement and, for database failures, an error counter.
func (s *Store) recordQuery(ctx context.Context, action string, duration time.Duration, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}

	s.recordDuration(ctx, metricQueryDuration, duration, map[string]string{
		spanAttrOperation: action,
		labelStatus:       status,
	})

	if err == nil {
		return
	}

	if errors.Is(err, lending.ErrConcurrencyConflict) {
		s.logInfo(ctx, logMsgConcurrencyConflict, logAttrAction, action)
		s.incrementCounter(ctx, metricConcurrencyConflicts, map[string]string{spanAttrOperation: action})

		return
	}

	s.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: action,
		labelStatus:       statusError,
		spanAttrErrorType: errorType(err),
	})
}

func (s *Store) startTransactionSpan(ctx context.Context, operation string) (context.Context, lending.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanNameTransaction+operation, map[string]string{
		spanAttrOperation: operation,
		logAttrDialect:    s.dialect,
	})
}

// finishTransaction logs, measures and closes the span of one transaction.
func (s *Store) finishTransaction(
	ctx context.Context,
	span lending.SpanContext,
	operation string,
	err error,
	duration time.Duration,
) {
	status := statusSuccess
	attrs := map[string]string{spanAttrDurationMS: formatMilliseconds(duration)}

	if err != nil {
		status = statusError
		attrs[spanAttrErrorType] = errorType(err)
	}

	s.recordDuration(ctx, metricTransactionDuration, duration, map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	})

	if err == nil {
		s.logInfo(ctx, logMsgOperation+operation, logAttrDurationMS, toMilliseconds(duration))
	}

	if s.tracingCollector != nil && span != nil {
		span.SetStatus(status)
		s.tracingCollector.FinishSpan(span, status, attrs)
	}
}
