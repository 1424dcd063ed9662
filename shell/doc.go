// Package shell holds the imperative glue shared by the feature services:
// retrying transactions that lost a serialization race, and logging, metrics and
// tracing around each service operation.
package shell
