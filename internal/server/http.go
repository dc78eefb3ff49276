package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mailbridge/mailbridge/internal/agent"
	"github.com/mailbridge/mailbridge/internal/instrumentation"
	"github.com/mailbridge/mailbridge/internal/logging"
)

const maxBodyBytes = 1 << 20 // 1 MB

// promptBody is the POST /prompt request body. Both identity token key
// spellings are accepted.
type promptBody struct {
	IdentityToken    string          `json:"identitytoken"`
	IdentityTokenAlt string          `json:"identity_token"`
	Messages         []agent.Message `json:"messages"`
	Stream           bool            `json:"stream"`
}

func (b *promptBody) token() string {
	if b.IdentityToken != "" {
		return b.IdentityToken
	}
	return b.IdentityTokenAlt
}

// completionDelta mirrors the OpenAI chat completion delta shape.
type completionDelta struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionChoice struct {
	Delta completionDelta `json:"delta"`
}

type completionMessage struct {
	Object  string             `json:"object,omitempty"`
	Choices []completionChoice `json:"choices"`
}

func chunkFor(content string) completionMessage {
	return completionMessage{
		Object: "chat.completion.chunk",
		Choices: []completionChoice{
			{Delta: completionDelta{Role: agent.RoleAssistant, Content: content}},
		},
	}
}

// NewRouter builds the HTTP chat router: POST /prompt, health probes and,
// when metrics are enabled, the prometheus scrape endpoint.
func NewRouter(sc *Context, provider *instrumentation.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	health := NewHealthChecker(sc)
	r.Method(http.MethodGet, "/healthz", health.LivenessHandler())
	r.Method(http.MethodGet, "/readyz", health.ReadinessHandler())

	if provider != nil && provider.Enabled() {
		r.Handle("/metrics", provider.MetricsHandler())
	}

	r.Post("/prompt", handlePrompt(sc))

	return r
}

// handlePrompt bridges one chat request to the orchestrator and emits the
// result in the protocol matching the request's stream flag.
func handlePrompt(sc *Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		logger := sc.Logger().With(logging.RequestID(requestID))

		var body promptBody
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			logger.Warn("invalid prompt body", logging.Err(err))
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		mode := instrumentation.ModeComplete
		if body.Stream {
			mode = instrumentation.ModeStream
		}
		app := sc.Orchestrator().App()

		result, err := sc.Orchestrator().SendPrompt(r.Context(), body.token(), agent.PromptRequest{
			Messages: body.Messages,
			Stream:   body.Stream,
		})
		if err != nil {
			logger.Error("prompt failed", logging.Err(err))
			sc.Metrics().RecordPromptRequest(r.Context(), app, mode, instrumentation.StatusError, time.Since(start))
			writeError(w, http.StatusInternalServerError, "Failed to process prompt")
			return
		}

		switch res := result.(type) {
		case agent.Streamed:
			writeSSE(w, res.Deltas)
		case agent.Complete:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(completionMessage{
				Choices: []completionChoice{
					{Delta: completionDelta{Role: agent.RoleAssistant, Content: res.Text}},
				},
			})
		default:
			logger.Error("unexpected prompt result variant", slog.String("type", fmt.Sprintf("%T", result)))
			writeError(w, http.StatusInternalServerError, "Failed to process prompt")
			return
		}

		sc.Metrics().RecordPromptRequest(r.Context(), app, mode, instrumentation.StatusSuccess, time.Since(start))
	}
}

// writeSSE drains the delta stream into the response body as SSE chunks and
// terminates it with the literal [DONE] sentinel.
func writeSSE(w http.ResponseWriter, deltas <-chan string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	for delta := range deltas {
		encoded, err := json.Marshal(chunkFor(delta))
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", encoded)
		flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flush()
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
