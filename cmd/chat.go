package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailbridge/mailbridge/internal/agent"
	"github.com/mailbridge/mailbridge/internal/config"
)

func newChatCmd() *cobra.Command {
	var app string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session in the terminal",
		Long: `Start an interactive chat session reading lines from standard input.

Each line becomes a user message; the assistant's reply streams to standard
output as it is generated. Type "exit" to quit. The identity token is taken
from the IDENTITY_TOKEN environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, app)
		},
	}

	cmd.Flags().StringVar(&app, "app", "gmail", "Connector app to bridge (gmail or notion)")

	return cmd
}

func runChat(cmd *cobra.Command, app string) error {
	// stdout belongs to the conversation; logs go to stderr and stay quiet.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()

	orchestrator, _, err := buildOrchestrator(cfg, app, logger)
	if err != nil {
		return err
	}

	var messages []agent.Message
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(`Enter something (type "exit" to quit): `)
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()
		if input == "exit" {
			break
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		messages = append(messages, agent.Message{Role: agent.RoleUser, Content: input})

		result, err := orchestrator.SendPrompt(cmd.Context(), cfg.IdentityToken, agent.PromptRequest{
			Messages: messages,
			Stream:   true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Print("Assistant said: ")
		var full strings.Builder
		switch res := result.(type) {
		case agent.Streamed:
			for delta := range res.Deltas {
				fmt.Print(delta)
				full.WriteString(delta)
			}
		case agent.Complete:
			fmt.Print(res.Text)
			full.WriteString(res.Text)
		}
		fmt.Print("\n\n")

		messages = append(messages, agent.Message{Role: agent.RoleAssistant, Content: full.String()})
	}

	return scanner.Err()
}
