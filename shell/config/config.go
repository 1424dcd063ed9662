package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLXDB  = "sqlx.db"

	LogFormatJSON = "json"
	LogFormatText = "text"

	defaultHTTPAddr       = ":8080"
	defaultSQLiteFile     = "lending.db"
	defaultMaxOpenLoans   = 3
	defaultReadTimeoutSec = 10
	defaultServiceName    = "library-loans"
)

const (
	envDBDriver          = "LENDING_DB_DRIVER"
	envDBAdapter         = "LENDING_DB_ADAPTER"
	envDBDSN             = "LENDING_DB_DSN"
	envHTTPAddr          = "LENDING_HTTP_ADDR"
	envLogLevel          = "LENDING_LOG_LEVEL"
	envLogFormat         = "LENDING_LOG_FORMAT"
	envLoansHorizonYears = "LENDING_LOANS_HORIZON_YEARS"
	envLoansMaxOpen      = "LENDING_LOANS_MAX_OPEN"
	envBcryptCost        = "LENDING_BCRYPT_COST"
	envTelemetryEnabled  = "LENDING_TELEMETRY_ENABLED"
	envOTLPTraces        = "LENDING_OTLP_TRACES_ENDPOINT"
	envOTLPMetrics       = "LENDING_OTLP_METRICS_ENDPOINT"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	HTTP       HTTPConfig       `toml:"http"`
	Log        LogConfig        `toml:"log"`
	Loans      LoansConfig      `toml:"loans"`
	Credential CredentialConfig `toml:"credential"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
}

type DatabaseConfig struct {
	Driver  string `toml:"driver"`
	Adapter string `toml:"adapter"`
	DSN     string `toml:"dsn"`
}

type HTTPConfig struct {
	Addr               string `toml:"addr"`
	ReadTimeoutSeconds int    `toml:"read_timeout_seconds"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type LoansConfig struct {
	HorizonYears int `toml:"horizon_years"`
	MaxOpenLoans int `toml:"max_open_loans"`
}

type CredentialConfig struct {
	BcryptCost int `toml:"bcrypt_cost"`
}

// TelemetryConfig switches the OpenTelemetry collectors on.
// Empty endpoints keep whatever global providers the process has registered.
type TelemetryConfig struct {
	Enabled         bool   `toml:"enabled"`
	ServiceName     string `toml:"service_name"`
	TracesEndpoint  string `toml:"traces_endpoint"`
	MetricsEndpoint string `toml:"metrics_endpoint"`
	Insecure        bool   `toml:"insecure"`
}

// Default returns a configuration that runs against a local SQLite file.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:  DriverSQLite,
			Adapter: AdapterSQLDB,
			DSN:     defaultSQLiteFile,
		},
		HTTP: HTTPConfig{
			Addr:               defaultHTTPAddr,
			ReadTimeoutSeconds: defaultReadTimeoutSec,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatJSON,
		},
		Loans: LoansConfig{
			HorizonYears: lending.DefaultHorizonYears,
			MaxOpenLoans: defaultMaxOpenLoans,
		},
		Credential: CredentialConfig{
			BcryptCost: bcrypt.DefaultCost,
		},
		Telemetry: TelemetryConfig{
			ServiceName: defaultServiceName,
		},
	}
}

// Load reads the TOML file at path on top of Default and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}

		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Join(ErrInvalidConfig, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	textFields := map[string]*string{
		envDBDriver:    &c.Database.Driver,
		envDBAdapter:   &c.Database.Adapter,
		envDBDSN:       &c.Database.DSN,
		envHTTPAddr:    &c.HTTP.Addr,
		envLogLevel:    &c.Log.Level,
		envLogFormat:   &c.Log.Format,
		envOTLPTraces:  &c.Telemetry.TracesEndpoint,
		envOTLPMetrics: &c.Telemetry.MetricsEndpoint,
	}

	for key, target := range textFields {
		if v, ok := lookup(key); ok {
			*target = v
		}
	}

	intFields := map[string]*int{
		envLoansHorizonYears: &c.Loans.HorizonYears,
		envLoansMaxOpen:      &c.Loans.MaxOpenLoans,
		envBcryptCost:        &c.Credential.BcryptCost,
	}

	for key, target := range intFields {
		v, ok := lookup(key)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}

		*target = n
	}

	if v, ok := lookup(envTelemetryEnabled); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, envTelemetryEnabled, err)
		}

		c.Telemetry.Enabled = enabled
	}

	return nil
}

func (c Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		switch c.Database.Adapter {
		case AdapterPGXPool, AdapterSQLDB, AdapterSQLXDB:
		default:
			problems = append(problems, "unknown database adapter "+strconv.Quote(c.Database.Adapter))
		}
	default:
		problems = append(problems, "unknown database driver "+strconv.Quote(c.Database.Driver))
	}

	if c.Database.DSN == "" {
		problems = append(problems, "database dsn is empty")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		problems = append(problems, "unknown log level "+strconv.Quote(c.Log.Level))
	}

	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatText {
		problems = append(problems, "unknown log format "+strconv.Quote(c.Log.Format))
	}

	if c.Loans.HorizonYears < 1 {
		problems = append(problems, "loans horizon must be at least one year")
	}

	if c.Loans.MaxOpenLoans < 0 {
		problems = append(problems, "max open loans must not be negative")
	}

	if c.Credential.BcryptCost < bcrypt.MinCost || c.Credential.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, "bcrypt cost out of range")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

// SlogLevel parses Level the way slog does, e.g. "debug" or "WARN".
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))

	return level, err
}
