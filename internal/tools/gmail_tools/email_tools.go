package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mailbridge/mailbridge/internal/server"
	"github.com/mailbridge/mailbridge/internal/tools/common"
)

// RegisterEmailTools registers the email operation tools with the MCP server
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.Context) error {
	sendEmailTool := mcp.NewTool("send_email",
		mcp.WithDescription("Send an email"),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("The email address of the recipient"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("The subject of the email"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("The body of the email"),
		),
	)
	s.AddTool(sendEmailTool, common.InstrumentedToolHandler("send_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	getEmailsTool := mcp.NewTool("get_emails",
		mcp.WithDescription("Get emails from inbox"),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of emails to retrieve (default: 10)"),
		),
		mcp.WithString("query",
			mcp.Description("Gmail search query to filter emails"),
		),
		mcp.WithArray("labelIds",
			mcp.Description("Array of label IDs to filter by"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(getEmailsTool, common.InstrumentedToolHandler("get_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmails(ctx, request, sc)
		}))

	getEmailTool := mcp.NewTool("get_email",
		mcp.WithDescription("Get a specific email by ID"),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to retrieve"),
		),
	)
	s.AddTool(getEmailTool, common.InstrumentedToolHandler("get_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	replyTool := mcp.NewTool("reply_to_email",
		mcp.WithDescription("Reply to an existing email"),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to reply to"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The reply message content"),
		),
	)
	s.AddTool(replyTool, common.InstrumentedToolHandler("reply_to_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReplyToEmail(ctx, request, sc)
		}))

	forwardTool := mcp.NewTool("forward_email",
		mcp.WithDescription("Forward an email to other recipients"),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to forward"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("The email address to forward to"),
		),
		mcp.WithString("message",
			mcp.Description("Additional message to include with the forward"),
		),
	)
	s.AddTool(forwardTool, common.InstrumentedToolHandler("forward_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleForwardEmail(ctx, request, sc)
		}))

	searchTool := mcp.NewTool("search_emails",
		mcp.WithDescription("Search emails using Gmail search syntax"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'from:example@gmail.com', 'subject:meeting', 'is:unread')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	return nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.Context) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to, ok := argString(args, "to")
	if !ok {
		return mcp.NewToolResultError("'to' field is required"), nil
	}
	subject, ok := argString(args, "subject")
	if !ok {
		return mcp.NewToolResultError("'subject' field is required"), nil
	}
	if _, ok := argString(args, "body"); !ok {
		return mcp.NewToolResultError("'body' field is required"), nil
	}

	result, err := sc.Gateway().ExecuteAction(ctx, actionSendEmail, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error sending email: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("send email", result.Error)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("✅ Email sent successfully!\n\nTo: %s\nSubject: %s\n\nYour email has been sent and is now in your Gmail sent folder.", to, subject)), nil
}

func handleGetEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.Context) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	result, err := sc.Gateway().ExecuteAction(ctx, actionGetEmails, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting emails: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("get emails", result.Error)), nil
	}

	list, count := formatEmailList(result.ResponseData(), "No emails found")
	return mcp.NewToolResultText(fmt.Sprintf("📧 Emails retrieved successfully!\n\n%s\n\nTotal: %d emails", list, count)), nil
}

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.Context) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if _, ok := argString(args, "emailId"); !ok {
		return mcp.NewToolResultError("'emailId' field is required"), nil
	}

	result, err := sc.Gateway().ExecuteAction(ctx, actionGetEmail, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting email: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("get email", result.Error)), nil
	}

	email := result.ResponseData()
	return mcp.NewToolResultText(fmt.Sprintf("📧 Email Details:\n\nFrom: %s\nSubject: %s\nDate: %s\n\nBody: %v",
		headerValue(email, "From"), headerValue(email, "Subject"), headerValue(email, "Date"), email["snippet"])), nil
}

func handleReplyToEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.Context) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if _, ok := argString(args, "emailId"); !ok {
		return mcp.NewToolResultError("'emailId' field is required"), nil
	}
	if _, ok := argString(args, "message"); !ok {
		return mcp.NewToolResultError("'message' field is required"), nil
	}

	result, err := sc.Gateway().ExecuteAction(ctx, actionReplyToEmail, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error sending reply: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("send reply", result.Error)), nil
	}

	return mcp.NewToolResultText("✅ Reply sent successfully!\n\nYour reply has been sent to the original email thread."), nil
}

func handleForwardEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.Context) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if _, ok := argString(args, "emailId"); !ok {
		return mcp.NewToolResultError("'emailId' field is required"), nil
	}
	to, ok := argString(args, "to")
	if !ok {
		return mcp.NewToolResultError("'to' field is required"), nil
	}

	result, err := sc.Gateway().ExecuteAction(ctx, actionForwardEmail, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error forwarding email: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("forward email", result.Error)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("✅ Email forwarded successfully!\n\nForwarded to: %s", to)), nil
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.Context) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, ok := argString(args, "query")
	if !ok {
		return mcp.NewToolResultError("'query' field is required"), nil
	}

	result, err := sc.Gateway().ExecuteAction(ctx, actionSearchEmails, entityID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error searching emails: %v", err)), nil
	}
	if !result.Successful {
		return mcp.NewToolResultError(actionError("search emails", result.Error)), nil
	}

	list, count := formatEmailList(result.ResponseData(), "No emails found matching your search")
	return mcp.NewToolResultText(fmt.Sprintf("🔍 Search results for %q:\n\n%s\n\nTotal: %d emails found", query, list, count)), nil
}

// formatEmailList renders the messages array of a list/search payload as
// one snippet bullet per email.
func formatEmailList(data map[string]any, emptyText string) (string, int) {
	messages, _ := data["messages"].([]any)
	if len(messages) == 0 {
		return emptyText, 0
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		email, ok := m.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %v (%v)", email["snippet"], email["id"]))
	}
	return strings.Join(lines, "\n"), len(messages)
}

// headerValue extracts a named header from a Gmail message payload.
func headerValue(email map[string]any, name string) string {
	payload, _ := email["payload"].(map[string]any)
	headers, _ := payload["headers"].([]any)
	for _, h := range headers {
		header, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if header["name"] == name {
			if v, ok := header["value"].(string); ok {
				return v
			}
		}
	}
	return "unknown"
}
