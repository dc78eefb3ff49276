package agent

// Role constants for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of a conversation. The full ordered history is resent
// on every request; the bridge only reads it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PromptRequest is one inbound chat request.
type PromptRequest struct {
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// PromptResult is the outcome of one prompt, a tagged variant over the two
// response modes. Exactly one variant is produced per request, chosen by the
// request's Stream flag.
type PromptResult interface {
	promptResult()
}

// Streamed is the streaming variant: a finite sequence of text deltas,
// pushed as the model produces them and closed when the turn ends. It must
// be drained exactly once.
type Streamed struct {
	Deltas <-chan string
}

func (Streamed) promptResult() {}

// Complete is the synchronous variant: the model's full final text.
type Complete struct {
	Text string
}

func (Complete) promptResult() {}
