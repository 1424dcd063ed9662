package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

const (
	defaultMaxOpenConnections = 50
	defaultMaxIdleConnections = 10
	defaultMaxConnLifetime    = time.Hour
	defaultMaxConnIdleTime    = time.Minute * 5
)

type pooledDB interface {
	SetMaxOpenConns(n int)
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
	SetConnMaxIdleTime(d time.Duration)
	PingContext(ctx context.Context) error
	Close() error
}

func configurePool(ctx context.Context, db pooledDB) error {
	db.SetMaxOpenConns(defaultMaxOpenConnections)
	db.SetMaxIdleConns(defaultMaxIdleConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	return nil
}

// PostgresSQLDB opens and pings a *sql.DB on top of lib/pq.
func PostgresSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := configurePool(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}
