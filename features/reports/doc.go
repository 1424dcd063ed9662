// Package reports answers read-only questions about loans. Every query runs in a
// read-only transaction; overdue figures are computed against the clock at call time.
package reports
