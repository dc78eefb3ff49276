package gmail_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mailbridge/mailbridge/internal/identity"
	"github.com/mailbridge/mailbridge/internal/server"
)

// Gmail action names on the Composio platform.
const (
	actionGetProfile   = "GMAIL_GET_PROFILE"
	actionSendEmail    = "GMAIL_SEND_EMAIL"
	actionGetEmails    = "GMAIL_GET_EMAILS"
	actionGetEmail     = "GMAIL_GET_EMAIL"
	actionReplyToEmail = "GMAIL_REPLY_TO_EMAIL"
	actionForwardEmail = "GMAIL_FORWARD_EMAIL"
	actionSearchEmails = "GMAIL_SEARCH_EMAILS"
	actionMarkAsRead   = "GMAIL_MARK_AS_READ"
	actionMarkAsUnread = "GMAIL_MARK_AS_UNREAD"
	actionMoveToTrash  = "GMAIL_MOVE_TO_TRASH"
	actionGetSettings  = "GMAIL_GET_SETTINGS"
)

// The stdio transport carries no per-caller identity token, so every tool
// is scoped to the fixed default entity.
const entityID = identity.DefaultEntityID

// RegisterGmailTools registers all Gmail-related tools with the MCP server
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.Context) error {
	if err := RegisterConnectionTools(s, sc); err != nil {
		return fmt.Errorf("failed to register connection tools: %w", err)
	}

	if err := RegisterEmailTools(s, sc); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	if err := RegisterManagementTools(s, sc); err != nil {
		return fmt.Errorf("failed to register management tools: %w", err)
	}

	return nil
}

// argString extracts a string argument, with ok=false for missing or empty
// values.
func argString(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

// argNumber extracts a numeric argument. JSON numbers arrive as float64.
func argNumber(args map[string]interface{}, key string) (float64, bool) {
	v, ok := args[key].(float64)
	return v, ok
}

// argStringArray extracts a string-array argument.
func argStringArray(args map[string]interface{}, key string) ([]string, bool) {
	raw, ok := args[key].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// actionError formats the failure text for a business-level action failure.
func actionError(what string, reason string) string {
	if reason == "" {
		reason = "unknown error"
	}
	return fmt.Sprintf("❌ Failed to %s: %s", what, reason)
}
