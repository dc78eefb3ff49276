package agent

// AppProfile binds an orchestrator to one connector app. It carries the
// app-specific probe action used by checkConnection and the system prompt
// handed to the model.
type AppProfile struct {
	// App is the Composio app name, e.g. "gmail".
	App string
	// Title is the human-readable app name used in messages, e.g. "Gmail".
	Title string
	// ProbeAction is the cheap action checkConnection executes to verify
	// the account is connected.
	ProbeAction string
	// SystemPrompt is the instruction block for the model.
	SystemPrompt string
}

// Gmail is the profile for the Gmail connector app.
var Gmail = AppProfile{
	App:         "gmail",
	Title:       "Gmail",
	ProbeAction: "GMAIL_GET_PROFILE",
	SystemPrompt: `You are a helpful assistant integrated with Gmail through Composio. You can help users manage their emails, check connections, and perform various Gmail actions.

**Available Capabilities:**
• Check user connection status to Gmail
• Initiate new Gmail connections
• Perform Gmail actions (send emails, read emails, manage labels, etc.)

**Rules:**
• Always verify connection status before performing Gmail actions
• Provide clear instructions for connection setup
• Handle errors gracefully and provide helpful feedback
• Respect user privacy and email content

Important:
- checkConnection should be used before other actions.
- connectAccount is used to authenticate the user's Gmail account. Only use it after checkConnection indicates the account is not connected.`,
}

// Notion is the profile for the Notion connector app.
var Notion = AppProfile{
	App:         "notion",
	Title:       "Notion",
	ProbeAction: "NOTION_GET_ABOUT_ME",
	SystemPrompt: `You are a helpful assistant integrated with Notion through Composio.

Important:
- checkConnection should be used before other actions.
- connectAccount is used to authenticate the user's Notion account. Only use it after checkConnection indicates the account is not connected.`,
}

// ProfileFor returns the profile for an app name, defaulting to Gmail for
// unknown apps.
func ProfileFor(app string) AppProfile {
	if app == Notion.App {
		return Notion
	}
	return Gmail
}
