package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/transport/httpapi"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if migrate {
				if err := store.Migrate(ctx); err != nil {
					return err
				}
			}

			services, err := buildServices()
			if err != nil {
				return err
			}

			server := httpapi.NewServer(services, logger)
			server.Server.ReadTimeout = time.Duration(cfg.HTTP.ReadTimeoutSeconds) * time.Second

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server starting", "addr", cfg.HTTP.Addr)
				errCh <- server.Start(cfg.HTTP.Addr)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			logger.Info("http server shutting down")

			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")

	return cmd
}
