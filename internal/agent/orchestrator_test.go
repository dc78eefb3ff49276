package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/mailbridge/mailbridge/internal/composio"
	"github.com/mailbridge/mailbridge/internal/identity"
)

// fakeModel replays scripted responses and records the message history of
// every round. When a streaming func is set it feeds the response content
// through it in two chunks.
type fakeModel struct {
	responses []*llms.ContentResponse
	err       error

	calls    int
	received [][]llms.MessageContent
	tools    []llms.Tool
}

func (m *fakeModel) GenerateContent(ctx context.Context, msgs []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	m.received = append(m.received, msgs)

	var co llms.CallOptions
	for _, o := range opts {
		o(&co)
	}
	m.tools = co.Tools

	if m.err != nil {
		return nil, m.err
	}

	idx := m.calls
	m.calls++
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	resp := m.responses[idx]

	if co.StreamingFunc != nil && len(resp.Choices) > 0 && len(resp.Choices[0].ToolCalls) == 0 {
		content := resp.Choices[0].Content
		half := len(content) / 2
		for _, chunk := range []string{content[:half], content[half:]} {
			if err := co.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}
	return resp, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, opts...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func textResponse(text string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}
}

func toolCallResponse(id, name, args string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   id,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			}},
		}},
	}
}

func newTestOrchestrator(model llms.Model, gw Gateway) *Orchestrator {
	return NewOrchestrator(model, NewRegistry(gw, nil), identity.NewResolver(nil), Gmail, nil)
}

func TestSendPromptComplete(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("Hello there")}}
	o := newTestOrchestrator(model, &fakeGateway{})

	result, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	complete, ok := result.(Complete)
	require.True(t, ok)
	assert.Equal(t, "Hello there", complete.Text)

	// System prompt first, then the caller's history
	require.Len(t, model.received, 1)
	msgs := model.received[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)

	// Static tools are always advertised
	names := make([]string, 0, len(model.tools))
	for _, tool := range model.tools {
		names = append(names, tool.Function.Name)
	}
	assert.Contains(t, names, ToolConnectAccount)
	assert.Contains(t, names, ToolCheckConnection)
}

func TestSendPromptToolRoundTrip(t *testing.T) {
	gw := &fakeGateway{
		execFn: func(action, _ string, _ map[string]any) (*composio.ActionResult, error) {
			assert.Equal(t, "GMAIL_GET_PROFILE", action)
			return connectedProfileResult(), nil
		},
	}
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", ToolCheckConnection, "{}"),
		textResponse("Your account is connected."),
	}}
	o := newTestOrchestrator(model, gw)

	result, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "am I connected?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, Complete{Text: "Your account is connected."}, result)

	// The probe ran and its result went back to the model as a tool message
	assert.Equal(t, []string{"GMAIL_GET_PROFILE"}, gw.executedActions)
	require.Len(t, model.received, 2)
	second := model.received[1]
	last := second[len(second)-1]
	assert.Equal(t, llms.ChatMessageTypeTool, last.Role)
	toolResp, ok := last.Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_1", toolResp.ToolCallID)
	assert.Contains(t, toolResp.Content, "a@b.com")
}

func TestSendPromptUnknownToolAndBadArguments(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", "no_such_tool", "{}"),
		toolCallResponse("call_2", ToolCheckConnection, "{not json"),
		textResponse("done"),
	}}
	o := newTestOrchestrator(model, &fakeGateway{})

	result, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "go"}},
	})
	require.NoError(t, err)
	assert.Equal(t, Complete{Text: "done"}, result)

	firstResult := model.received[1][len(model.received[1])-1].Parts[0].(llms.ToolCallResponse)
	assert.Contains(t, firstResult.Content, `Unknown tool "no_such_tool"`)

	secondResult := model.received[2][len(model.received[2])-1].Parts[0].(llms.ToolCallResponse)
	assert.Contains(t, secondResult.Content, "invalid arguments")
}

func TestSendPromptModelFailure(t *testing.T) {
	model := &fakeModel{err: errors.New("model unavailable")}
	o := newTestOrchestrator(model, &fakeGateway{})

	result, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.ErrorIs(t, err, ErrSendPrompt)
	assert.Nil(t, result)
}

func TestSendPromptBuildToolsFailure(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("unreached")}}
	o := newTestOrchestrator(model, &fakeGateway{listErr: errors.New("catalog down")})

	_, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.ErrorIs(t, err, ErrSendPrompt)
	assert.Zero(t, model.calls)
}

func TestSendPromptBadIdentityTokenStillAnswers(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("hello anyway")}}
	o := newTestOrchestrator(model, &fakeGateway{})

	result, err := o.SendPrompt(context.Background(), "not-base64!!", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, Complete{Text: "hello anyway"}, result)
}

func TestSendPromptStreamed(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("Hello world")}}
	o := newTestOrchestrator(model, &fakeGateway{})

	result, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Stream:   true,
	})
	require.NoError(t, err)

	streamed, ok := result.(Streamed)
	require.True(t, ok)

	var got string
	for delta := range streamed.Deltas {
		got += delta
	}
	assert.Equal(t, "Hello world", got)
}

func TestSendPromptStreamedModelFailureClosesChannel(t *testing.T) {
	model := &fakeModel{err: errors.New("model unavailable")}
	o := newTestOrchestrator(model, &fakeGateway{})

	result, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Stream:   true,
	})
	require.NoError(t, err)

	streamed, ok := result.(Streamed)
	require.True(t, ok)

	// No deltas, but the channel must close so the reader can finish.
	for range streamed.Deltas {
		t.Fatal("unexpected delta from failed stream")
	}
}

func TestSendPromptStepBudget(t *testing.T) {
	// A model that never stops calling tools is cut off at the budget.
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_x", ToolCheckConnection, "{}"),
	}}
	o := newTestOrchestrator(model, &fakeGateway{})

	result, err := o.SendPrompt(context.Background(), "", PromptRequest{
		Messages: []Message{{Role: RoleUser, Content: "loop forever"}},
	})
	require.NoError(t, err)
	assert.Equal(t, MaxSteps, model.calls)
	_, ok := result.(Complete)
	assert.True(t, ok)
}
