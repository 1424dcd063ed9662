package config

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLX opens and pings a *sqlx.DB on top of lib/pq.
func PostgresSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := configurePool(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}
