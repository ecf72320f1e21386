package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/photo-editor-mcp/internal/editor"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Starts the editor as an MCP server. Requests are read from stdin one per
line and responses are written to stdout. Configure it in an MCP client.

WebP export (the default export.format) needs libvips and a build with
-tags govips. Other builds encode exports as JPEG instead.`,
		Example: `  # Serve over stdio
  photo-editor serve

  # Also expose Prometheus metrics
  photo-editor serve --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			logger.Info("Photo editor starting",
				"version", server.Version,
				"webp", imaging.WebPAvailable(),
				"export_format", cfg.Export.Format,
				"export_max_dimension", cfg.Export.MaxDimension)
			warnMissingWebP(cfg, logger)

			metrics := editor.NewMetrics()
			srv := server.New(
				server.WithConfig(*cfg),
				server.WithMetrics(metrics),
				server.WithLogger(logger),
			)

			if metricsAddr != "" {
				stop, err := serveMetrics(metricsAddr, metrics)
				if err != nil {
					return err
				}
				defer stop()
			}

			if err := srv.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("Photo editor stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the Prometheus /metrics endpoint (disabled when empty)")
	return cmd
}

// serveMetrics starts the metrics endpoint and returns a function that shuts
// it down.
func serveMetrics(addr string, m *editor.Metrics) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Metrics available", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Surface bind errors before the MCP loop takes over stdin.
	select {
	case err := <-serverErr:
		return nil, err
	case <-time.After(100 * time.Millisecond):
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown failed", "err", err)
		}
	}, nil
}
