package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyApp        = "app"
	KeyTool       = "tool"
	KeyAction     = "action"
	KeyEntityHash = "entity_hash"
	KeyRequestID  = "request_id"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithApp returns a logger with the app attribute set.
func WithApp(logger *slog.Logger, app string) *slog.Logger {
	return logger.With(slog.String(KeyApp, app))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// App returns a slog attribute for the connector app name.
func App(app string) slog.Attr {
	return slog.String(KeyApp, app)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Action returns a slog attribute for the connector action name.
func Action(action string) slog.Attr {
	return slog.String(KeyAction, action)
}

// RequestID returns a slog attribute for the request correlation id.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEntity returns a hashed representation of an entity id for logging
// purposes. This allows correlation of log entries without exposing the
// user's address.
func AnonymizeEntity(entityID string) string {
	if entityID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(entityID))
	return "entity:" + hex.EncodeToString(hash[:8])
}

// EntityHash returns a slog attribute with the anonymized entity id.
func EntityHash(entityID string) slog.Attr {
	return slog.String(KeyEntityHash, AnonymizeEntity(entityID))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content,
// as even partial token prefixes can aid attacks.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
