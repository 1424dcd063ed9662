package config

import (
	"context"
	"database/sql"
	"net/url"

	_ "modernc.org/sqlite" // sqlite driver
)

const sqliteBusyTimeoutMS = "5000"

// SQLiteDSN turns a database file path into a modernc.org/sqlite DSN with foreign keys enabled,
// a busy timeout and write transactions that take the write lock up front.
func SQLiteDSN(path string) string {
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", "busy_timeout("+sqliteBusyTimeoutMS+")")
	query.Set("_txlock", "immediate")

	return "file:" + path + "?" + query.Encode()
}

// SQLiteSQLDB opens the SQLite database file at path.
// A single connection serializes writers inside the process.
func SQLiteSQLDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
