package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mailbridge/mailbridge/internal/instrumentation"
	"github.com/mailbridge/mailbridge/internal/logging"
	"github.com/mailbridge/mailbridge/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and audit
// logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.Context,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)
		sc.Logger().Info("tool invoked",
			logging.Tool(toolName),
			logging.Status(status),
			logging.Operation("mcp.tool"),
		)

		return result, err
	}
}
