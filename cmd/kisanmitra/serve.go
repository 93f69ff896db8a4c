package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the flows over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := c.newApp(ctx, port)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- a.Start() }()

			var serveErr error
			select {
			case <-ctx.Done():
				c.logger.Info("shutting down server")
			case serveErr = <-errCh:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := a.Shutdown(shutdownCtx); err != nil {
				c.logger.Error("server forced to shutdown", zap.Error(err))
				return errors.Join(serveErr, err)
			}
			c.logger.Info("server exiting")
			return serveErr
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen address (overrides PORT)")
	return cmd
}
