package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mailbridge/mailbridge/internal/server"
	"github.com/mailbridge/mailbridge/internal/tools/common"
)

// RegisterConnectionTools registers the account connection tools with the
// MCP server
func RegisterConnectionTools(s *mcpserver.MCPServer, sc *server.Context) error {
	connectTool := mcp.NewTool("connect_gmail",
		mcp.WithDescription("Connect to Gmail"),
	)
	s.AddTool(connectTool, common.InstrumentedToolHandler("connect_gmail", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleConnectGmail(ctx, sc)
		}))

	checkTool := mcp.NewTool("check_gmail_connection",
		mcp.WithDescription("Check Gmail connection status"),
	)
	s.AddTool(checkTool, common.InstrumentedToolHandler("check_gmail_connection", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckGmailConnection(ctx, sc)
		}))

	return nil
}

func handleConnectGmail(ctx context.Context, sc *server.Context) (*mcp.CallToolResult, error) {
	conn, err := sc.Gateway().InitiateConnection(ctx, "gmail", entityID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error initiating Gmail connection: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("🔗 Gmail connection initiated!\n\nPlease connect your Gmail account by clicking on the link below:\n\n%s\n\nAfter connecting, you can use Gmail actions.", conn.RedirectURL)), nil
}

func handleCheckGmailConnection(ctx context.Context, sc *server.Context) (*mcp.CallToolResult, error) {
	result, err := sc.Gateway().ExecuteAction(ctx, actionGetProfile, entityID, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error checking Gmail connection: %v", err)), nil
	}

	if !result.Successful {
		return mcp.NewToolResultText("❌ Your Gmail account is not connected! Please use the connect_gmail tool first."), nil
	}

	profile := result.ResponseData()
	return mcp.NewToolResultText(fmt.Sprintf("✅ Your Gmail account is connected!\n\nUser Profile:\n• Email: %v\n• Messages: %v total\n• Threads: %v total",
		profile["emailAddress"], profile["messagesTotal"], profile["threadsTotal"])), nil
}
