// Package composio provides a client for the Composio connector platform.
//
// Composio proxies OAuth-backed access to third-party apps (Gmail, Notion)
// through named actions. The client exposes the three capabilities the
// bridge needs: listing the action catalog for an app, executing a named
// action for an entity, and initiating an account connection.
package composio
