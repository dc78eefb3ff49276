// Package identity resolves opaque identity tokens to connector entity ids.
//
// An identity token is a base64-encoded JSON document carrying at least an
// "address" field. The address becomes the entity id under which the
// Composio platform scopes the user's connected accounts.
package identity

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/mailbridge/mailbridge/internal/logging"
)

// DefaultEntityID is used on transports that carry no per-caller identity
// token, such as the MCP stdio server.
const DefaultEntityID = "default-user"

type tokenPayload struct {
	Address string `json:"address"`
}

// Resolver decodes identity tokens into entity ids.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver that logs decode failures to the given
// logger. A nil logger falls back to slog.Default().
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve decodes token as base64 → UTF-8 JSON and returns the address
// field. Decoding is best-effort: malformed base64, malformed JSON and a
// missing address all yield ("", false). Resolve never returns an error;
// downstream tool handlers scoped to an empty entity fail gracefully on
// their own.
func (r *Resolver) Resolve(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		r.logger.Debug("identity token is not valid base64",
			logging.Operation("identity.resolve"),
			slog.String("token", logging.SanitizeToken(token)),
			logging.Err(err))
		return "", false
	}

	var payload tokenPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		r.logger.Debug("identity token payload is not valid JSON",
			logging.Operation("identity.resolve"),
			slog.String("token", logging.SanitizeToken(token)),
			logging.Err(err))
		return "", false
	}

	if payload.Address == "" {
		r.logger.Debug("identity token payload has no address",
			logging.Operation("identity.resolve"))
		return "", false
	}

	return payload.Address, true
}
