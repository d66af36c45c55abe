package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fa-metadata/fa40/internal/config"
	"github.com/fa-metadata/fa40/internal/handlers"
	"github.com/fa-metadata/fa40/internal/schema"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an HTTP service for header generation",
		Long: `Exposes header generation over HTTP so lab systems can integrate
without shelling out to the CLI.

POST a TIFF (part "file") and a connector (part "connector") as
multipart form data to /api/header; the response carries the generated
FA 4.0 header and its validation result.`,
		Example: `  # Start server on default port 8888
  fa40 serve

  # Start server on custom port
  fa40 serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			ex, err := newExtractor(cfg)
			if err != nil {
				return err
			}
			sch, err := schema.Load(cfg.SchemaDir)
			if err != nil {
				slog.Warn("schema unavailable, unknown-field checks disabled", "dir", cfg.SchemaDir, "err", err)
				sch = nil
			}
			handler := handlers.New(ex, sch)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/header", handler.HandleGenerate)
			mux.HandleFunc("/api/transforms", handler.HandleTransforms)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Header service available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
