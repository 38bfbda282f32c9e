package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/RichieRish05/ImmiAI/internal/fallback"
	"github.com/RichieRish05/ImmiAI/internal/marker"
	"github.com/RichieRish05/ImmiAI/internal/rag"
)

// echoModel is a fake chat model that replies with a fixed answer followed by
// the sources marker it finds in the system prompt, mimicking a model that
// follows the marker directive. It records the messages it was given.
type echoModel struct {
	answer    string
	streamErr error
	gotInput  []*schema.Message
}

func (m *echoModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.gotInput = in
	return schema.AssistantMessage(m.reply(in), nil), nil
}

func (m *echoModel) Stream(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	m.gotInput = in
	reply := m.reply(in)
	// Split the reply into two chunks to exercise incremental writes.
	mid := len(reply) / 2
	return schema.StreamReaderFromArray([]*schema.Message{
		schema.AssistantMessage(reply[:mid], nil),
		schema.AssistantMessage(reply[mid:], nil),
	}), nil
}

func (m *echoModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// reply extracts the pre-filled marker from the system prompt and appends it
// to the canned answer, the way an instruction-following model would.
func (m *echoModel) reply(in []*schema.Message) string {
	mark := marker.Format(nil)
	if len(in) > 0 {
		if _, ids, ok := marker.Parse(in[0].Content); ok {
			mark = marker.Format(ids)
		}
	}
	return m.answer + "\n\n" + mark
}

// fixedRetriever returns the same bundle for every query.
type fixedRetriever struct {
	bundle rag.ContextBundle
}

func (r *fixedRetriever) Retrieve(_ context.Context, _ string) rag.ContextBundle {
	return r.bundle
}

func newTestSelector(t *testing.T) *fallback.Selector {
	t.Helper()
	sel, err := fallback.NewSelector(nil)
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	return sel
}

func Test_Chat_StreamsAnswerWithRetrievedSources(t *testing.T) {
	t.Parallel()
	chatModel := &echoModel{answer: "You can refuse entry without a judicial warrant."}
	retriever := &fixedRetriever{bundle: rag.ContextBundle{
		ContextText: "ICE needs a judicial warrant to enter your home.",
		SourceIDs:   []string{"home-visits-1"},
		Origin:      rag.OriginVectorStore,
	}}

	a, err := New(&Config{ChatModel: chatModel, Retriever: retriever, Fallback: newTestSelector(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out strings.Builder
	origin, err := a.Chat(context.Background(), []Message{
		{Role: "user", Content: "Can ICE come into my house?"},
	}, &out)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if origin != rag.OriginVectorStore {
		t.Errorf("origin = %q, want %q", origin, rag.OriginVectorStore)
	}
	if !strings.HasSuffix(out.String(), "[SOURCES:home-visits-1]") {
		t.Errorf("response must end with the sources marker, got %q", out.String())
	}
	if len(chatModel.gotInput) == 0 || chatModel.gotInput[0].Role != schema.System {
		t.Fatal("model input must start with a system message")
	}
	if !strings.Contains(chatModel.gotInput[0].Content, "ICE needs a judicial warrant") {
		t.Error("system prompt missing retrieved context")
	}
}

func Test_Chat_NoMatch_EmptyMarker(t *testing.T) {
	t.Parallel()
	chatModel := &echoModel{answer: "Hello! How can I help you today?"}
	retriever := &fixedRetriever{bundle: rag.ContextBundle{Origin: rag.OriginNone}}

	a, err := New(&Config{ChatModel: chatModel, Retriever: retriever, Fallback: newTestSelector(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out strings.Builder
	origin, err := a.Chat(context.Background(), []Message{
		{Role: "user", Content: "hello"},
	}, &out)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if origin != rag.OriginNone {
		t.Errorf("origin = %q, want %q", origin, rag.OriginNone)
	}
	if !strings.HasSuffix(out.String(), "[SOURCES:]") {
		t.Errorf("response must end with an empty sources marker, got %q", out.String())
	}
	if strings.Contains(chatModel.gotInput[0].Content, "RELEVANT CONTEXT") {
		t.Error("system prompt must not carry a context block when nothing was retrieved")
	}
}

func Test_Chat_FallbackKicksInForKeywordQuery(t *testing.T) {
	t.Parallel()
	chatModel := &echoModel{answer: "You have the right to remain silent."}
	retriever := &fixedRetriever{bundle: rag.ContextBundle{Origin: rag.OriginNone}}

	a, err := New(&Config{ChatModel: chatModel, Retriever: retriever, Fallback: newTestSelector(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out strings.Builder
	origin, err := a.Chat(context.Background(), []Message{
		{Role: "user", Content: "What are my rights if ICE shows up?"},
	}, &out)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if origin != rag.OriginFallback {
		t.Errorf("origin = %q, want %q", origin, rag.OriginFallback)
	}
	if !strings.HasSuffix(out.String(), "[SOURCES:"+fallback.SourceID+"]") {
		t.Errorf("response must end with the fallback source marker, got %q", out.String())
	}
}

func Test_Chat_NoRetrieverConfigured(t *testing.T) {
	t.Parallel()
	chatModel := &echoModel{answer: "General guidance only."}

	a, err := New(&Config{ChatModel: chatModel})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out strings.Builder
	origin, err := a.Chat(context.Background(), []Message{
		{Role: "user", Content: "what should I carry?"},
	}, &out)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if origin != rag.OriginNone {
		t.Errorf("origin = %q, want %q", origin, rag.OriginNone)
	}
	if out.Len() == 0 {
		t.Error("expected streamed output")
	}
}

func Test_Chat_HistoryPassedThrough(t *testing.T) {
	t.Parallel()
	chatModel := &echoModel{answer: "Continuing our conversation."}

	a, err := New(&Config{ChatModel: chatModel})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out strings.Builder
	if _, err := a.Chat(context.Background(), []Message{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "user", Content: "follow-up"},
	}, &out); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// system + 2 history + current
	if len(chatModel.gotInput) != 4 {
		t.Fatalf("model input length = %d, want 4", len(chatModel.gotInput))
	}
	if chatModel.gotInput[1].Content != "first question" || chatModel.gotInput[2].Content != "first answer" {
		t.Error("history not passed through in order")
	}
	if chatModel.gotInput[3].Content != "follow-up" {
		t.Errorf("last message = %q, want current user message", chatModel.gotInput[3].Content)
	}
}

func Test_Chat_EmptyMessages(t *testing.T) {
	t.Parallel()
	a, err := New(&Config{ChatModel: &echoModel{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out strings.Builder
	if _, err := a.Chat(context.Background(), nil, &out); err == nil {
		t.Error("expected error for empty messages")
	}
}

func Test_Chat_ModelError(t *testing.T) {
	t.Parallel()
	chatModel := &echoModel{streamErr: errors.New("backend unavailable")}
	a, err := New(&Config{ChatModel: chatModel})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out strings.Builder
	if _, err := a.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, &out); err == nil {
		t.Error("expected error when the model stream fails")
	}
}

func Test_New_RequiresChatModel(t *testing.T) {
	t.Parallel()
	if _, err := New(&Config{}); err == nil {
		t.Error("expected error for nil ChatModel")
	}
}
