package sqlengine

const (
	MetricQueryDuration       = metricQueryDuration
	MetricTransactionDuration = metricTransactionDuration
	MetricDatabaseErrors      = metricDatabaseErrors
	SpanNameTransaction       = spanNameTransaction
	LogMsgRollbackFailed      = logMsgRollbackFailed
	LogMsgMigrationApplied    = logMsgMigrationApplied
	LogMsgSQLExecuted         = logMsgSQLExecuted
)
