// Package telemetry adapts OpenTelemetry to the observability interfaces of package lending,
// so the store and the feature services can report spans, metrics and trace-correlated logs.
//
// The collectors take their tracer and meter from the caller; with the global no-op providers
// installed they cost next to nothing.
package telemetry
