package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/RichieRish05/ImmiAI/internal/assistant"
	"github.com/RichieRish05/ImmiAI/internal/fallback"
	"github.com/RichieRish05/ImmiAI/internal/provider"
)

// NewAskCmd constructs the `immiai ask` command, which sends a single
// question to the assistant and streams the response to stdout.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the immigration rights assistant a question",
		Long: `Ask ImmiAI a question about immigration rights.

The answer is grounded in the ingested knowledge base when a vector store
is configured, and falls back to curated know-your-rights material for
rights-related questions otherwise.

Examples:
  immiai ask "can ICE enter my home without a warrant?"
  immiai ask "do I have to show my documents at a traffic stop?"
  immiai ask "what should I do during a workplace raid?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			retriever, _, closeRetriever, err := buildRetriever(ctx, slog.Default())
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer closeRetriever()

			selector, err := fallback.NewSelector(fallbackKeywords())
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			asst, err := assistant.New(&assistant.Config{
				ChatModel: chatModel,
				Retriever: retriever,
				Fallback:  selector,
			})
			if err != nil {
				return fmt.Errorf("ask: failed to initialise assistant: %w", err)
			}

			msgs := []assistant.Message{{Role: "user", Content: args[0]}}
			_, err = asst.Chat(ctx, msgs, os.Stdout) //nolint:wrapcheck // CLI entry point — error goes directly to cobra
			if err == nil {
				fmt.Println()
			}
			return err
		},
	}

	return cmd
}
