package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/mailbridge/mailbridge/internal/agent"
	"github.com/mailbridge/mailbridge/internal/composio"
	"github.com/mailbridge/mailbridge/internal/identity"
	"github.com/mailbridge/mailbridge/internal/instrumentation"
)

type stubGateway struct{}

func (stubGateway) ListTools(context.Context, string, string) ([]composio.ActionSpec, error) {
	return nil, nil
}

func (stubGateway) ExecuteAction(context.Context, string, string, map[string]any) (*composio.ActionResult, error) {
	return &composio.ActionResult{Successful: true}, nil
}

func (stubGateway) InitiateConnection(context.Context, string, string) (*composio.Connection, error) {
	return &composio.Connection{}, nil
}

// stubModel answers every prompt with a fixed text, optionally chunked
// through the streaming func.
type stubModel struct {
	text string
	err  error
}

func (m *stubModel) GenerateContent(ctx context.Context, _ []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	var co llms.CallOptions
	for _, o := range opts {
		o(&co)
	}
	if co.StreamingFunc != nil {
		for _, chunk := range []string{m.text[:1], m.text[1:]} {
			if err := co.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.text}}}, nil
}

func (m *stubModel) Call(ctx context.Context, _ string, _ ...llms.CallOption) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func newTestRouter(t *testing.T, model llms.Model) http.Handler {
	t.Helper()
	gw := stubGateway{}
	orchestrator := agent.NewOrchestrator(model, agent.NewRegistry(gw, nil), identity.NewResolver(nil), agent.Gmail, nil)
	sc := NewContext(context.Background(), nil, gw, orchestrator, &instrumentation.Metrics{}, nil)
	return NewRouter(sc, nil)
}

func TestHandlePromptComplete(t *testing.T) {
	router := newTestRouter(t, &stubModel{text: "Hello"})

	req := httptest.NewRequest(http.MethodPost, "/prompt",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}],"stream":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"choices":[{"delta":{"role":"assistant","content":"Hello"}}]}`, rec.Body.String())

	// The non-streaming body carries no object discriminator
	assert.NotContains(t, rec.Body.String(), "object")
}

func TestHandlePromptStreamed(t *testing.T) {
	router := newTestRouter(t, &stubModel{text: "Hi"})

	req := httptest.NewRequest(http.MethodPost, "/prompt",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}],"stream":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `"object":"chat.completion.chunk"`)
	assert.Contains(t, body, `"role":"assistant"`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))

	// Every event is a data: line
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if line == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(line, "data: "), "unexpected SSE line: %q", line)
	}
}

func TestHandlePromptInvalidBody(t *testing.T) {
	router := newTestRouter(t, &stubModel{text: "unused"})

	req := httptest.NewRequest(http.MethodPost, "/prompt", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestHandlePromptOrchestrationFailure(t *testing.T) {
	router := newTestRouter(t, &stubModel{err: errors.New("model down")})

	req := httptest.NewRequest(http.MethodPost, "/prompt",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to process prompt"}`, rec.Body.String())
	// Internal detail must not leak
	assert.NotContains(t, rec.Body.String(), "model down")
}

func TestPromptBodyTokenSpellings(t *testing.T) {
	b := promptBody{IdentityToken: "primary", IdentityTokenAlt: "alt"}
	assert.Equal(t, "primary", b.token())

	b = promptBody{IdentityTokenAlt: "alt"}
	assert.Equal(t, "alt", b.token())

	b = promptBody{}
	assert.Equal(t, "", b.token())
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &stubModel{text: "unused"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessAfterShutdown(t *testing.T) {
	sc := NewContext(context.Background(), nil, stubGateway{}, nil, &instrumentation.Metrics{}, nil)
	health := NewHealthChecker(sc)

	require.NoError(t, sc.Shutdown())

	rec := httptest.NewRecorder()
	health.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting down")
}
