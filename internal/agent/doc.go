// Package agent implements the tool-invocation bridge between inbound chat
// requests and the language model.
//
// For each request the bridge resolves the caller's identity to a connector
// entity id, assembles the tool set the model may call (the Composio action
// catalog for the target app merged with the static connection-management
// tools), and runs the model with that tool set under a bounded step budget.
// The result is either a stream of text deltas or a single completed string,
// chosen by the caller.
package agent
