package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mailbridge/mailbridge/internal/composio"
	"github.com/mailbridge/mailbridge/internal/config"
	"github.com/mailbridge/mailbridge/internal/instrumentation"
	"github.com/mailbridge/mailbridge/internal/server"
	"github.com/mailbridge/mailbridge/internal/tools/gmail_tools"
)

func newServeCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Gmail tools
for AI assistants over the stdio transport.

All Gmail access is proxied through the Composio connector platform; set
COMPOSIO_API_KEY before starting. Tools are scoped to the fixed
"default-user" entity because stdio carries no per-caller identity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}

func runServe(debugMode bool) error {
	// stdout belongs to the MCP transport; logs go to stderr.
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	if cfg.ComposioAPIKey == "" {
		return fmt.Errorf("COMPOSIO_API_KEY is not set")
	}

	shutdownCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// No scrape endpoint exists on the stdio transport, so metrics stay off.
	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentation.Config{Enabled: false})
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}

	gateway := composio.NewClient(cfg.ComposioAPIKey, composio.WithBaseURL(cfg.ComposioBaseURL))
	sc := server.NewContext(shutdownCtx, cfg, gateway, nil, provider.Metrics(), logger)
	defer func() {
		_ = sc.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("Gmail AI Agent Server", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := gmail_tools.RegisterGmailTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register Gmail tools: %w", err)
	}

	return runStdioServer(mcpSrv)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
