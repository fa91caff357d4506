package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/kanban/internal/modal"
	"github.com/jask/kanban/internal/server"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP with a live event stream",
		Long: `Serve exposes the board on a local HTTP API for a browser front end.

Changes made through the API are saved like any other change, and every
connected /stream client receives the updated board.

Examples:
  kanban serve
  kanban serve --addr 127.0.0.1:8080 --backend sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, f, func(e *env) error {
				if addr == "" {
					addr = e.cfg.Server.Addr
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				e.metrics.Watch(e.store)
				srv := server.New(e.store, modal.New(), e.metrics, e.log)
				errCh := make(chan error, 1)
				go func() { errCh <- srv.Start(addr) }()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}
				e.log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				return e.saved()
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
