// Package commands holds the cobra command tree of the lending binary.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine"
	"github.com/AntonStoeckl/library-loans-go/shell"
	"github.com/AntonStoeckl/library-loans-go/shell/config"
	"github.com/AntonStoeckl/library-loans-go/shell/telemetry"
)

var (
	configPath string

	cfg           config.Config
	logger        *slog.Logger
	observability shell.Observability
	store         *sqlengine.Store
	closeStore    config.CloseFunc
	providers     *telemetry.Providers
)

// Execute runs the root command until it finishes or the process receives SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer release()

	return newRootCmd(os.Stdout).ExecuteContext(ctx)
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "lending",
		Short:        "Library loan lifecycle and inventory engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded

			logger, err = newLogger(cfg.Log, cfg.Telemetry.Enabled, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			observability = shell.Observability{Logger: logger, ContextualLogger: logger}
			storeOptions := []sqlengine.Option{
				sqlengine.WithLogger(logger),
				sqlengine.WithContextualLogger(logger),
			}

			if cfg.Telemetry.Enabled {
				providers, err = telemetry.Setup(cmd.Context(), telemetry.ExportConfig{
					ServiceName:     cfg.Telemetry.ServiceName,
					TracesEndpoint:  cfg.Telemetry.TracesEndpoint,
					MetricsEndpoint: cfg.Telemetry.MetricsEndpoint,
					Insecure:        cfg.Telemetry.Insecure,
				})
				if err != nil {
					return err
				}

				collectors := telemetry.FromGlobal()
				observability.Metrics = collectors.Metrics
				observability.Tracing = collectors.Tracing
				storeOptions = append(storeOptions,
					sqlengine.WithMetrics(collectors.Metrics),
					sqlengine.WithTracing(collectors.Tracing),
				)
			}

			store, closeStore, err = config.OpenStore(cmd.Context(), cfg.Database, storeOptions...)

			return err
		},
	}

	root.SetOut(out)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(migrateCmd(), serveCmd(), librarianCmd(), loanCmd(), reportCmd())

	return root
}

func newLogger(logCfg config.LogConfig, telemetryEnabled bool, w io.Writer) (*slog.Logger, error) {
	level, err := logCfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if logCfg.Format == config.LogFormatText {
		handler = slog.NewTextHandler(w, opts)
	}

	if telemetryEnabled {
		return telemetry.NewSlogBridgeLogger(telemetry.InstrumentationName, handler), nil
	}

	return slog.New(handler), nil
}

// release closes the store and flushes telemetry.
func release() {
	if closeStore != nil {
		closeStore()
		closeStore = nil
	}

	if providers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := providers.Shutdown(ctx); err != nil && logger != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
		providers = nil
	}
}
