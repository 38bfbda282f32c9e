package assistant

import (
	"strings"
	"testing"

	"github.com/RichieRish05/ImmiAI/internal/rag"
)

func Test_AssemblePrompt_WithContext(t *testing.T) {
	t.Parallel()
	bundle := rag.ContextBundle{
		ContextText: "You have the right to remain silent.",
		SourceIDs:   []string{"home-visits-1", "basic-rights-2"},
		Origin:      rag.OriginVectorStore,
	}
	got := assemblePrompt(bundle)

	if !strings.Contains(got, "RELEVANT CONTEXT FROM KNOWLEDGE BASE:\nYou have the right to remain silent.") {
		t.Error("prompt missing context block")
	}
	if !strings.Contains(got, "[SOURCES:home-visits-1,basic-rights-2]") {
		t.Error("prompt missing pre-filled sources marker")
	}
	if !strings.Contains(got, "right to remain silent and the right to an attorney") {
		t.Error("prompt missing principles")
	}
}

func Test_AssemblePrompt_WithoutContext(t *testing.T) {
	t.Parallel()
	got := assemblePrompt(rag.ContextBundle{Origin: rag.OriginNone})

	if strings.Contains(got, "RELEVANT CONTEXT FROM KNOWLEDGE BASE") {
		t.Error("empty bundle must not produce a context block")
	}
	if !strings.Contains(got, "[SOURCES:]") {
		t.Error("prompt must still carry an empty sources marker")
	}
}

func Test_AssemblePrompt_Deterministic(t *testing.T) {
	t.Parallel()
	bundle := rag.ContextBundle{
		ContextText: "passage",
		SourceIDs:   []string{"a", "b"},
		Origin:      rag.OriginVectorStore,
	}
	if assemblePrompt(bundle) != assemblePrompt(bundle) {
		t.Error("assemblePrompt must be deterministic for the same bundle")
	}
}
