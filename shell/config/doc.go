// Package config loads the service configuration and builds database connections from it.
//
// Configuration is read from a TOML file and then overridden by LENDING_* environment variables:
//
//	LENDING_DB_DRIVER            postgres | sqlite
//	LENDING_DB_ADAPTER           pgx.pool | sql.db | sqlx.db (postgres only)
//	LENDING_DB_DSN               connection string, or the database file path for sqlite
//	LENDING_HTTP_ADDR            listen address of the HTTP API
//	LENDING_LOG_LEVEL            debug | info | warn | error
//	LENDING_LOG_FORMAT           json | text
//	LENDING_LOANS_HORIZON_YEARS  how far ahead an estimated return date may lie
//	LENDING_LOANS_MAX_OPEN       open loans per reader, 0 disables the limit
//	LENDING_BCRYPT_COST          bcrypt work factor
//
// The connection factories use the same pool settings for every adapter type.
package config
