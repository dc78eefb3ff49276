// Package gmail_tools registers the Gmail MCP tools.
//
// Each tool is a single-action front-end to the Composio connector: it
// validates its declared parameters, executes the corresponding Gmail action
// for the fixed default entity, and formats the outcome as one text content
// block. No handler ever propagates an error to the MCP transport; every
// failure path returns an error-describing text result instead.
package gmail_tools
