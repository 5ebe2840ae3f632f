package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"supportbot/internal/httpapi"
	"supportbot/internal/watch"
)

func NewServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			maxSessions, _ := cmd.Flags().GetInt("max-sessions")
			watchSources, _ := cmd.Flags().GetBool("watch")

			if _, err := a.chatBot(ctx); err != nil {
				return err
			}
			logger, err := a.analyticsLogger()
			if err != nil {
				return err
			}
			if watchSources {
				w := watch.New(a.store, a.sources())
				go func() {
					if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						slog.Error("source watcher stopped", "error", err)
					}
				}()
			}

			srv := &http.Server{
				Addr: addr,
				Handler: httpapi.NewHandler(httpapi.Deps{
					NewBot:      func() httpapi.Bot { return a.forkBot() },
					Analytics:   logger,
					MaxSessions: maxSessions,
				}),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(_ net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				slog.Info("shutting down")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().Int("max-sessions", 0, "Maximum concurrent chat sessions before the oldest is dropped")
	cmd.Flags().Bool("watch", false, "Rebuild the index whenever a source file changes")
	return cmd
}
