package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go-aadhaar-verifier/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the verification HTTP server",
		Long: `Start the verification HTTP server.

Endpoints:
  GET  /api/health           - health check
  POST /api/verify-document  - validate card text on its own
  POST /api/verify-with-form - compare card text with entered details
  POST /api/validate-aadhaar - checksum validation of a single number
  GET  /metrics              - Prometheus metrics

The server stops gracefully on Ctrl+C or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			config := state.config

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.New(registry)

			verifier, err := createVerifier(&config, m)
			if err != nil {
				return err
			}

			schemas, err := LoadRequestSchemas()
			if err != nil {
				return fmt.Errorf("failed to load request schemas: %w", err)
			}

			serverState := &ServerState{
				verifier:       verifier,
				schemas:        schemas,
				metricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			}
			if config.RateLimit.Enabled {
				slog.Info("Rate limiting enabled", "requests_per_minute", config.RateLimit.RequestsPerMinute)
				serverState.rateLimiter = NewRateLimiter(config.RateLimit.RequestsPerMinute, m)
			}

			server, err := NewServer(serverState, config.ServerConfig)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			if state.cfgFile != "" {
				watchLogLevel(state.viper)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("failed to listen and serve: %w", err)
			case <-ctx.Done():
				return server.Stop()
			}
		},
	}
}
