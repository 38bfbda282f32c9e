// Package assistant composes the full conversation pipeline: it retrieves
// knowledge base context for the latest user message, applies the static
// fallback when retrieval comes back empty, assembles the system prompt, and
// streams the model's response to the caller.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/RichieRish05/ImmiAI/internal/budget"
	"github.com/RichieRish05/ImmiAI/internal/fallback"
	"github.com/RichieRish05/ImmiAI/internal/logging"
	"github.com/RichieRish05/ImmiAI/internal/rag"
)

// Message is one turn of a conversation as submitted by the client.
type Message struct {
	// Role is "user", "assistant", or "system".
	Role string `json:"role"`
	// Content is the message text.
	Content string `json:"content"`
}

// Config holds the dependencies required to construct an Assistant.
type Config struct {
	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.ToolCallingChatModel

	// Retriever supplies knowledge base context for the latest user message.
	// May be nil if retrieval is not configured.
	Retriever rag.Retriever

	// Fallback selects the static knowledge bundle when retrieval yields
	// nothing. May be nil to disable the fallback entirely.
	Fallback *fallback.Selector

	// MaxContextTokens is the estimated token budget for the full input
	// context (system prompt + history + current user message). History is
	// trimmed oldest-first to fit. Defaults to budget.DefaultMaxContextTokens
	// if zero.
	MaxContextTokens int
}

// Assistant answers immigration rights questions over a streamed chat.
type Assistant struct {
	chatModel        model.ToolCallingChatModel
	retriever        rag.Retriever
	fallback         *fallback.Selector
	maxContextTokens int
}

// New constructs an Assistant from the provided Config.
func New(cfg *Config) (*Assistant, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("assistant: ChatModel must not be nil")
	}

	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	return &Assistant{
		chatModel:        cfg.ChatModel,
		retriever:        cfg.Retriever,
		fallback:         cfg.Fallback,
		maxContextTokens: maxCtx,
	}, nil
}

// Chat runs one conversation turn. The latest message's content is used as
// the retrieval query; prior messages become conversation history. Response
// chunks are written to w as they arrive from the model, unbuffered, so
// callers can stream them onward. The returned origin reports where the
// injected context came from (vector store, fallback, or none).
//
// Retrieval problems never fail the turn; the model is simply prompted
// without context. Chat returns an error only for invalid input or a model
// failure.
func (a *Assistant) Chat(ctx context.Context, msgs []Message, w io.Writer) (rag.Origin, error) {
	if len(msgs) == 0 {
		return rag.OriginNone, fmt.Errorf("assistant: messages must not be empty")
	}

	query := msgs[len(msgs)-1].Content

	bundle := rag.ContextBundle{Origin: rag.OriginNone}
	if a.retriever != nil {
		bundle = a.retriever.Retrieve(ctx, query)
	}
	if a.fallback != nil {
		bundle = a.fallback.Select(query, bundle)
	}

	logging.FromContext(ctx).Debug("assistant: context assembled",
		slog.String("origin", string(bundle.Origin)),
		slog.Int("sources", len(bundle.SourceIDs)),
	)

	input := a.buildMessages(ctx, msgs, bundle)

	sr, err := a.chatModel.Stream(ctx, input)
	if err != nil {
		return bundle.Origin, fmt.Errorf("assistant: stream failed: %w", err)
	}
	defer sr.Close()

	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return bundle.Origin, fmt.Errorf("assistant: stream receive error: %w", err)
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		if _, err := io.WriteString(w, msg.Content); err != nil {
			return bundle.Origin, fmt.Errorf("assistant: write error: %w", err)
		}
	}

	return bundle.Origin, nil
}

// buildMessages converts client messages into the model input slice. The
// system prompt and the current user message are fixed; everything before the
// current message is history that may be trimmed oldest-first to fit the
// token budget.
func (a *Assistant) buildMessages(ctx context.Context, msgs []Message, bundle rag.ContextBundle) []*schema.Message {
	system := schema.SystemMessage(assemblePrompt(bundle))
	current := toSchemaMessage(msgs[len(msgs)-1])

	var history []*schema.Message
	for _, m := range msgs[:len(msgs)-1] {
		history = append(history, toSchemaMessage(m))
	}

	before := len(history)
	history = budget.TrimHistory([]*schema.Message{system, current}, history, a.maxContextTokens)
	if dropped := before - len(history); dropped > 0 {
		logging.FromContext(ctx).Warn("assistant: dropped history messages to fit context window",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(history)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}

	result := make([]*schema.Message, 0, len(history)+2)
	result = append(result, system)
	result = append(result, history...)
	result = append(result, current)
	return result
}

// toSchemaMessage maps a client message role onto the eino schema. Unknown
// roles are treated as user messages.
func toSchemaMessage(m Message) *schema.Message {
	switch m.Role {
	case "assistant":
		return schema.AssistantMessage(m.Content, nil)
	case "system":
		return schema.SystemMessage(m.Content)
	default:
		return schema.UserMessage(m.Content)
	}
}
