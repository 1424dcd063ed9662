package shell

import (
	"context"
	"slices"
)

// Execute runs one service operation: it opens an observation, retries fn on
// concurrency conflicts and reports the outcome.
func Execute(
	ctx context.Context,
	observability Observability,
	operation string,
	retryOptions []RetryOption,
	fn RetryableFunc,
) error {
	ctx, observation := observability.Begin(ctx, operation)

	if observability.Metrics != nil {
		retryOptions = append(slices.Clone(retryOptions), WithRetryMetrics(observability.Metrics, operation))
	}

	metrics, err := RetryWithExponentialBackoff(ctx, fn, retryOptions...)
	observation.End(ctx, metrics, err)

	return err
}
