// Package helper provides test fixtures, SQLite-backed stores and observability spies.
package helper
