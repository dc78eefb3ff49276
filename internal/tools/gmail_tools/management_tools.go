package gmail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mailbridge/mailbridge/internal/server"
	"github.com/mailbridge/mailbridge/internal/tools/common"
)

// RegisterManagementTools registers the mailbox management tools with the
// MCP server
func RegisterManagementTools(s *mcpserver.MCPServer, sc *server.Context) error {
	markReadTool := mcp.NewTool("mark_as_read",
		mcp.WithDescription("Mark emails as read"),
		mcp.WithArray("emailIds",
			mcp.Required(),
			mcp.Description("Array of email IDs to mark as read"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(markReadTool, common.InstrumentedToolHandler("mark_as_read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMarkEmails(ctx, request, sc, actionMarkAsRead, "read")
		}))

	markUnreadTool := mcp.NewTool("mark_as_unread",
		mcp.WithDescription("Mark emails as unread"),
		mcp.WithArray("emailIds",
			mcp.Required(),
			mcp.Description("Array of email IDs to mark as unread"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(markUnreadTool, common.InstrumentedToolHandler("mark_as_unread", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMarkEmails(ctx, request, sc, actionMarkAsUnread, "unread")
		}))

	trashTool := mcp.NewTool("move_to_trash",
		mcp.WithDescription("Move emails to trash"),
		mcp.WithArray("emailIds",
			mcp.Required(),
			mcp.Description("Array of email IDs to move to trash"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(trashTool, common.InstrumentedToolHandler("move_to_trash", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMoveToTrash(ctx, request, sc)
		}))

	settingsTool := mcp.NewTool("get_gmail_settings",
		mcp.WithDescription("Get Gmail settings"),
	)
	s.AddTool(settingsTool, common.InstrumentedToolHandler("get_gmail_settings", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSettings(ctx, sc)
		}))

	return nil
}

func handleMarkEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.Context, action, state string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	emailIDs, ok := argStringArray(args, "emailIds")
	if !ok {
		return mcp.NewToolResultError("'emailIds' must be a non-empty array of email IDs"), nil
	}

	result, err := sc.Gateway().ExecuteAction(ctx, action, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error marking emails as %s: %v", state, err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError(fmt.Sprintf("mark emails as %s", state), result.Error)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("✅ Emails marked as %s successfully!\n\nMarked %d email(s) as %s.", state, len(emailIDs), state)), nil
}

func handleMoveToTrash(ctx context.Context, request mcp.CallToolRequest, sc *server.Context) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	emailIDs, ok := argStringArray(args, "emailIds")
	if !ok {
		return mcp.NewToolResultError("'emailIds' must be a non-empty array of email IDs"), nil
	}

	result, err := sc.Gateway().ExecuteAction(ctx, actionMoveToTrash, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error moving emails to trash: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("move emails to trash", result.Error)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Emails moved to trash successfully!\n\nMoved %d email(s) to trash.", len(emailIDs))), nil
}

func handleGetSettings(ctx context.Context, sc *server.Context) (*mcp.CallToolResult, error) {
	result, err := sc.Gateway().ExecuteAction(ctx, actionGetSettings, entityID, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting Gmail settings: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("get Gmail settings", result.Error)), nil
	}

	settings, err := json.MarshalIndent(result.ResponseData(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting Gmail settings: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("⚙️ Gmail Settings:\n\n%s", settings)), nil
}
