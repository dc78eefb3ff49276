// Package cmd implements the command-line interface for mailbridge.
//
// This package provides the following commands:
//   - api: Start the HTTP chat server exposing POST /prompt
//   - chat: Start an interactive chat session in the terminal
//   - serve: Start the MCP server to provide Gmail tools for AI assistants
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
