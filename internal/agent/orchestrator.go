package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tmc/langchaingo/llms"

	"github.com/mailbridge/mailbridge/internal/identity"
	"github.com/mailbridge/mailbridge/internal/logging"
)

// MaxSteps bounds the number of model rounds (and therefore tool-call
// batches) a single prompt may consume.
const MaxSteps = 25

// ErrSendPrompt is the generic failure returned to front-ends when the
// orchestration itself fails. Internal detail is logged, not leaked.
var ErrSendPrompt = errors.New("failed to send prompt")

// Orchestrator runs the model with the assembled tool set for one app.
type Orchestrator struct {
	llm      llms.Model
	registry *Registry
	resolver *identity.Resolver
	profile  AppProfile
	maxSteps int
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator bound to one app profile.
func NewOrchestrator(model llms.Model, registry *Registry, resolver *identity.Resolver, profile AppProfile, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		llm:      model,
		registry: registry,
		resolver: resolver,
		profile:  profile,
		maxSteps: MaxSteps,
		logger:   logging.WithApp(logger, profile.App),
	}
}

// App returns the connector app name this orchestrator is bound to.
func (o *Orchestrator) App() string {
	return o.profile.App
}

// SendPrompt resolves the caller's identity, assembles the tool set and runs
// the model over the given message history.
//
// When req.Stream is true the returned result is Streamed and the model runs
// in a background goroutine; the delta channel is closed when the turn
// completes or fails. Otherwise the call blocks and returns Complete.
//
// An unresolvable identity token is not an error: the turn proceeds with an
// empty entity id and tools scoped to it fail gracefully as normal tool
// results. Failures of the model call itself are logged and re-signaled as
// ErrSendPrompt.
func (o *Orchestrator) SendPrompt(ctx context.Context, identityToken string, req PromptRequest) (PromptResult, error) {
	entityID, ok := o.resolver.Resolve(identityToken)
	if !ok {
		o.logger.Info("no entity id resolved from identity token, continuing without identity",
			slog.String("token", logging.SanitizeToken(identityToken)))
	} else {
		o.logger.Debug("resolved entity id", logging.EntityHash(entityID))
	}

	tools, err := o.registry.BuildTools(ctx, o.profile, entityID)
	if err != nil {
		o.logger.Error("failed to build tool set", logging.Err(err))
		return nil, ErrSendPrompt
	}

	msgs := o.composeMessages(req.Messages)
	llmTools := toLLMTools(tools)

	if req.Stream {
		deltas := make(chan string, 16)
		go func() {
			defer close(deltas)
			sink := func(_ context.Context, chunk []byte) error {
				if len(chunk) > 0 {
					deltas <- string(chunk)
				}
				return nil
			}
			if _, err := o.run(ctx, msgs, tools, llmTools, sink); err != nil {
				// The channel is already in the caller's hands; the
				// stream simply ends early.
				o.logger.Error("streamed prompt failed", logging.Err(err))
			}
		}()
		return Streamed{Deltas: deltas}, nil
	}

	text, err := o.run(ctx, msgs, tools, llmTools, nil)
	if err != nil {
		o.logger.Error("prompt failed", logging.Err(err))
		return nil, ErrSendPrompt
	}
	return Complete{Text: text}, nil
}

// run drives the model/tool loop until the model answers without tool calls
// or the step budget is exhausted. Tool failures become tool results; only
// model-call failures are returned as errors.
func (o *Orchestrator) run(ctx context.Context, msgs []llms.MessageContent, tools map[string]Tool, llmTools []llms.Tool, sink func(context.Context, []byte) error) (string, error) {
	opts := []llms.CallOption{llms.WithTools(llmTools)}
	if sink != nil {
		opts = append(opts, llms.WithStreamingFunc(sink))
	}

	var lastText string
	for step := 0; step < o.maxSteps; step++ {
		resp, err := o.llm.GenerateContent(ctx, msgs, opts...)
		if err != nil {
			return "", fmt.Errorf("model call: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("model returned no choices")
		}

		choice := resp.Choices[0]
		lastText = choice.Content
		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			assistant.Parts = append(assistant.Parts, llms.TextContent{Text: choice.Content})
		}
		for _, tc := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, tc)
		}
		msgs = append(msgs, assistant)

		// The model issues tool calls sequentially within a turn; so do we.
		for _, tc := range choice.ToolCalls {
			msgs = append(msgs, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    o.dispatch(ctx, tools, tc),
				}},
			})
		}
	}

	o.logger.Warn("step budget exhausted before final answer", slog.Int("max_steps", o.maxSteps))
	return lastText, nil
}

// dispatch routes one model tool call to its handler. It always yields a
// text result: unknown tools, malformed arguments and handler failures all
// come back as error-describing strings.
func (o *Orchestrator) dispatch(ctx context.Context, tools map[string]Tool, tc llms.ToolCall) string {
	name := tc.FunctionCall.Name
	tool, ok := tools[name]
	if !ok {
		return fmt.Sprintf("Unknown tool %q", name)
	}

	args := map[string]any{}
	if raw := tc.FunctionCall.Arguments; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return fmt.Sprintf("Error running tool %s: invalid arguments: %v", name, err)
		}
	}

	o.logger.Debug("dispatching tool call", logging.Tool(name))
	return o.registry.RunSafely(ctx, tool, args)
}

// composeMessages prefixes the system prompt and converts the caller's
// history without mutating it.
func (o *Orchestrator) composeMessages(history []Message) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(history)+1)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, o.profile.SystemPrompt))
	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}
	return msgs
}

// toLLMTools converts the tool map to the model API's tool descriptors in a
// stable order.
func toLLMTools(tools map[string]Tool) []llms.Tool {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]llms.Tool, 0, len(names))
	for _, name := range names {
		tool := tools[name]
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return out
}
