package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/facultykb/facultygraph/internal/api"
	"github.com/facultykb/facultygraph/internal/ingest"
	"github.com/facultykb/facultygraph/internal/media"
	"github.com/facultykb/facultygraph/internal/upsert"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("serve: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("serve: ensuring schema: %w", err)
			}

			mirror, err := newMirror(ctx, logger)
			if err != nil {
				return fmt.Errorf("serve: connecting to graph store: %w", err)
			}
			defer func() { _ = mirror.Close(ctx) }()

			mediaDir := media.NewDir(cfg.Media.Root)
			up := upsert.New(st, mirror, mediaDir, logger)
			driver := ingest.NewDriver(st, up, newChain(logger), mirror, mediaDir, logger)

			queue := api.NewQueue(driver, ingest.Options{
				MaxTextLength: cfg.Ingest.MaxTextLength,
			}, cfg.API.QueueSize, logger)
			queue.Start(ctx)

			srv := api.NewServer(st, up, mirror, queue, logger, cfg.API.AuthToken, cfg.API.UploadDir)

			if cfg.API.AuthToken == "" {
				logger.Warn("HTTP API: auth is DISABLED; set FACULTYGRAPH_API_AUTH_TOKEN or api.auth_token for production use")
			}

			httpSrv := &http.Server{
				Addr:              cfg.API.ListenAddr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       60 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP API server starting", "addr", cfg.API.ListenAddr)
				if listenErr := httpSrv.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
					errCh <- fmt.Errorf("serve: HTTP server: %w", listenErr)
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
			case startErr := <-errCh:
				if startErr != nil {
					return startErr
				}
				return nil
			}

			const shutdownTimeout = 10 * time.Second
			if shutdownErr := api.Shutdown(httpSrv, shutdownTimeout); shutdownErr != nil {
				return fmt.Errorf("serve: graceful shutdown: %w", shutdownErr)
			}

			// The worker stops with the command context; let it finish the
			// run in flight before tearing down connections.
			queue.Wait()

			// Drain the errCh in case ListenAndServe returned after Shutdown.
			if startErr := <-errCh; startErr != nil {
				return startErr
			}

			return nil
		},
	}
	return cmd
}
