package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mailbridge/mailbridge/internal/composio"
	"github.com/mailbridge/mailbridge/internal/logging"
)

// Names of the static connection-management tools. They override connector
// actions of the same name when the tool sets are merged.
const (
	ToolConnectAccount  = "connectAccount"
	ToolCheckConnection = "checkConnection"
)

// Gateway is the connector capability the tool registry depends on.
// *composio.Client satisfies it.
type Gateway interface {
	ListTools(ctx context.Context, app, entityID string) ([]composio.ActionSpec, error)
	ExecuteAction(ctx context.Context, action, entityID string, params map[string]any) (*composio.ActionResult, error)
	InitiateConnection(ctx context.Context, app, entityID string) (*composio.Connection, error)
}

// Tool is one callable unit exposed to the language model.
type Tool struct {
	Name        string
	Description string
	// Parameters is the JSON-schema document describing the arguments.
	Parameters map[string]any
	// Execute runs the tool. Errors returned here never reach the model;
	// RunSafely converts them to a descriptive text result.
	Execute func(ctx context.Context, args map[string]any) (string, error)
}

// Registry assembles the tool set available to the model for one request.
type Registry struct {
	gateway Gateway
	logger  *slog.Logger
}

// NewRegistry creates a tool registry over the given connector gateway.
func NewRegistry(gateway Gateway, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{gateway: gateway, logger: logger}
}

// BuildTools fetches the connector's action catalog for the profile's app
// and merges it with the static connection-management tools, which take
// precedence on name collision. The returned map is keyed by tool name, so
// names are unique by construction.
func (r *Registry) BuildTools(ctx context.Context, profile AppProfile, entityID string) (map[string]Tool, error) {
	specs, err := r.gateway.ListTools(ctx, profile.App, entityID)
	if err != nil {
		return nil, fmt.Errorf("build tools for %s: %w", profile.App, err)
	}

	tools := make(map[string]Tool, len(specs)+2)
	for _, spec := range specs {
		tools[spec.Name] = r.connectorTool(spec, entityID)
	}

	// Static tools overwrite connector entries of the same name.
	tools[ToolConnectAccount] = r.connectAccountTool(profile, entityID)
	tools[ToolCheckConnection] = r.checkConnectionTool(profile, entityID)

	return tools, nil
}

// connectorTool wraps one catalog action as a model-callable tool bound to
// the entity id.
func (r *Registry) connectorTool(spec composio.ActionSpec, entityID string) Tool {
	name := spec.Name
	return Tool{
		Name:        name,
		Description: spec.Description,
		Parameters:  spec.ParameterSchema(),
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			result, err := r.gateway.ExecuteAction(ctx, name, entityID, args)
			if err != nil {
				return "", err
			}
			if !result.Successful {
				reason := result.Error
				if reason == "" {
					reason = "unknown error"
				}
				return fmt.Sprintf("Action %s failed: %s", name, reason), nil
			}
			encoded, err := json.Marshal(result.Data)
			if err != nil {
				return "", fmt.Errorf("encode action result: %w", err)
			}
			return string(encoded), nil
		},
	}
}

func (r *Registry) connectAccountTool(profile AppProfile, entityID string) Tool {
	return Tool{
		Name:        ToolConnectAccount,
		Description: fmt.Sprintf("Authenticate the user's %s account", profile.Title),
		Parameters:  emptyObjectSchema(),
		Execute: func(ctx context.Context, _ map[string]any) (string, error) {
			conn, err := r.gateway.InitiateConnection(ctx, profile.App, entityID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("🔗 %s connection initiated!\n\nPlease connect your %s account by clicking on the link below:\n\n%s\n\nAfter connecting, you can use %s actions.",
				profile.Title, profile.Title, conn.RedirectURL, profile.Title), nil
		},
	}
}

func (r *Registry) checkConnectionTool(profile AppProfile, entityID string) Tool {
	return Tool{
		Name:        ToolCheckConnection,
		Description: fmt.Sprintf("Check the %s connection by performing a simple action", profile.Title),
		Parameters:  emptyObjectSchema(),
		Execute: func(ctx context.Context, _ map[string]any) (string, error) {
			result, err := r.gateway.ExecuteAction(ctx, profile.ProbeAction, entityID, nil)
			if err != nil {
				return "", err
			}
			if !result.Successful {
				return fmt.Sprintf("❌ Your %s account is not connected!", profile.Title), nil
			}
			return connectedSummary(profile, result.ResponseData()), nil
		},
	}
}

// connectedSummary formats the probe action's profile payload into the
// connection confirmation shown to the model.
func connectedSummary(profile AppProfile, data map[string]any) string {
	return fmt.Sprintf("✅ Your %s account is connected!\n\nUser Profile:\n• Email: %s\n• Messages: %s total\n• Threads: %s total",
		profile.Title,
		stringField(data, "emailAddress"),
		numberField(data, "messagesTotal"),
		numberField(data, "threadsTotal"))
}

// RunSafely executes a tool and guarantees a text result. Every failure
// path, including panics, is converted to an error-describing string so the
// orchestrator can surface it to the model as a normal tool result instead
// of aborting the turn.
func (r *Registry) RunSafely(ctx context.Context, tool Tool, args map[string]any) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool handler panicked",
				logging.Tool(tool.Name),
				slog.Any("panic", rec))
			result = fmt.Sprintf("Error running tool %s: %v", tool.Name, rec)
		}
	}()

	out, err := tool.Execute(ctx, args)
	if err != nil {
		r.logger.Error("tool execution failed",
			logging.Tool(tool.Name),
			logging.Err(err))
		return fmt.Sprintf("Error running tool %s: %v", tool.Name, err)
	}
	return out
}

func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return "unknown"
}

// numberField renders a numeric payload field. JSON numbers decode as
// float64; integral values are printed without a fraction.
func numberField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	default:
		return "unknown"
	}
}
