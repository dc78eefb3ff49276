// Package llm constructs the language model client used by the prompt
// orchestrator. Any OpenAI-compatible completion endpoint works; the base
// URL and model id come from configuration.
package llm

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mailbridge/mailbridge/internal/config"
)

// New creates the completion client from configuration.
func New(cfg *config.Config) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.LLMAPIKey),
		openai.WithModel(cfg.LLMModelID),
	}

	if cfg.LLMBaseURL != "" {
		// Clean up common URL mistakes
		opts = append(opts, openai.WithBaseURL(strings.TrimSuffix(cfg.LLMBaseURL, "/")))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai init: %w", err)
	}
	return model, nil
}
