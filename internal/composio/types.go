package composio

import "encoding/json"

// ActionSpec describes one callable connector action as advertised by the
// Composio catalog for an app.
type ActionSpec struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name,omitempty"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ParameterSchema returns the action's JSON-schema parameter document as a
// generic map, or an empty object schema if none was advertised.
func (s ActionSpec) ParameterSchema() map[string]any {
	schema := map[string]any{}
	if len(s.Parameters) > 0 {
		// Best effort; a malformed schema degrades to an empty one.
		_ = json.Unmarshal(s.Parameters, &schema)
	}
	if len(schema) == 0 {
		schema = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return schema
}

// ActionResult is the outcome of executing one connector action.
//
// Successful=false is a normal, non-exceptional outcome (for example an
// unconnected account) and is distinct from a transport error, which is
// returned as a Go error by the client instead.
type ActionResult struct {
	Successful bool           `json:"successful"`
	Data       map[string]any `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ResponseData returns the nested response_data payload, or nil if absent.
func (r *ActionResult) ResponseData() map[string]any {
	if r == nil || r.Data == nil {
		return nil
	}
	if rd, ok := r.Data["response_data"].(map[string]any); ok {
		return rd
	}
	return nil
}

// Connection represents an in-progress account authorization. The end user
// must open the redirect URL and complete the OAuth grant out-of-band.
type Connection struct {
	RedirectURL      string `json:"redirectUrl"`
	ConnectionStatus string `json:"connectionStatus,omitempty"`
	ConnectedAccount string `json:"connectedAccountId,omitempty"`
}
