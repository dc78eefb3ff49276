package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailbridge/mailbridge/internal/agent"
	"github.com/mailbridge/mailbridge/internal/composio"
	"github.com/mailbridge/mailbridge/internal/config"
	"github.com/mailbridge/mailbridge/internal/identity"
	"github.com/mailbridge/mailbridge/internal/instrumentation"
	"github.com/mailbridge/mailbridge/internal/llm"
	"github.com/mailbridge/mailbridge/internal/logging"
	"github.com/mailbridge/mailbridge/internal/server"
)

func newAPICmd() *cobra.Command {
	var (
		addr string
		app  string
	)

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Start the HTTP chat server",
		Long: `Start the HTTP chat server exposing POST /prompt.

The request body carries the identity token, the full conversation history
and a stream flag. Streamed responses are emitted as Server-Sent Events
terminated by a literal [DONE] sentinel; non-streamed responses return one
JSON completion object.

Health probes are served on /healthz and /readyz. When METRICS_ENABLED=true
the prometheus scrape endpoint is served on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(addr, app)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default \":$PORT\")")
	cmd.Flags().StringVar(&app, "app", "gmail", "Connector app to bridge (gmail or notion)")

	return cmd
}

func runAPI(addr, app string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	if addr == "" {
		addr = ":" + cfg.Port
	}

	shutdownCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orchestrator, gateway, err := buildOrchestrator(cfg, app, logger)
	if err != nil {
		return err
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentation.Config{
		Enabled:        cfg.MetricsEnabled,
		ServiceName:    "mailbridge",
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}

	sc := server.NewContext(shutdownCtx, cfg, gateway, orchestrator, provider.Metrics(), logger)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.NewRouter(sc, provider),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr), logging.App(app))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-shutdownCtx.Done():
	}

	logger.Info("shutting down")
	_ = sc.Shutdown()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := httpServer.Shutdown(stopCtx); err != nil {
		logger.Error("error during http server shutdown", logging.Err(err))
	}
	if err := provider.Shutdown(stopCtx); err != nil {
		logger.Error("error during instrumentation shutdown", logging.Err(err))
	}
	return nil
}

// buildOrchestrator wires the model client, connector gateway and tool
// registry into one orchestrator bound to the given app.
func buildOrchestrator(cfg *config.Config, app string, logger *slog.Logger) (*agent.Orchestrator, agent.Gateway, error) {
	model, err := llm.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	gateway := composio.NewClient(cfg.ComposioAPIKey, composio.WithBaseURL(cfg.ComposioBaseURL))
	registry := agent.NewRegistry(gateway, logger)
	resolver := identity.NewResolver(logger)

	orchestrator := agent.NewOrchestrator(model, registry, resolver, agent.ProfileFor(app), logger)
	return orchestrator, gateway, nil
}
