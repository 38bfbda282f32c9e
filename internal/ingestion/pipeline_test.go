package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RichieRish05/ImmiAI/internal/rag"
)

// fakeEmbedder returns a zero vector per input text.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0}
	}
	return out, nil
}

// captureStore records upserted documents.
type captureStore struct {
	docs       []rag.Document
	embeddings [][]float32
}

func (s *captureStore) Upsert(_ context.Context, docs []rag.Document, embeddings [][]float32) error {
	s.docs = append(s.docs, docs...)
	s.embeddings = append(s.embeddings, embeddings...)
	return nil
}

func (s *captureStore) Search(_ context.Context, _ []float32, _ int) ([]rag.Document, error) {
	return nil, nil
}

func (s *captureStore) Delete(_ context.Context, _ []string) error { return nil }
func (s *captureStore) Close() error                               { return nil }

func Test_Ingest_FetchChunkEmbedUpsert(t *testing.T) {
	t.Parallel()

	// 2500 chars with size 1000 / overlap 100 produces chunks starting at
	// 0, 900, 1800: three chunks.
	body := strings.Repeat("r", 2500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	store := &captureStore{}
	p, err := NewPipeline(fakeEmbedder{}, store, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	src := Source{URL: srv.URL, Topic: "basic-rights", Organization: "ilrc"}
	if err := p.Ingest(context.Background(), []Source{src}, nil); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(store.docs) != 3 {
		t.Fatalf("want 3 chunks, got %d", len(store.docs))
	}
	if len(store.embeddings) != 3 {
		t.Errorf("want 3 embeddings, got %d", len(store.embeddings))
	}
	for i, doc := range store.docs {
		if doc.Source != srv.URL {
			t.Errorf("doc[%d].Source = %q", i, doc.Source)
		}
		if doc.Metadata["topic"] != "basic-rights" || doc.Metadata["organization"] != "ilrc" {
			t.Errorf("doc[%d] metadata = %v", i, doc.Metadata)
		}
	}
	// Middle chunks carry the configured overlap.
	if store.docs[0].Content[900:] != store.docs[1].Content[:100] {
		t.Error("consecutive chunks must overlap by 100 chars")
	}
}

func Test_Ingest_ChunkIDsDeterministic(t *testing.T) {
	t.Parallel()
	a := chunkID("https://example.org/page", 0)
	b := chunkID("https://example.org/page", 0)
	c := chunkID("https://example.org/page", 1)
	if a != b {
		t.Error("same source and index must yield the same id")
	}
	if a == c {
		t.Error("different indexes must yield different ids")
	}
}

func Test_Ingest_FetchErrorAborts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	store := &captureStore{}
	p, err := NewPipeline(fakeEmbedder{}, store, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	err = p.Ingest(context.Background(), []Source{{URL: srv.URL}}, nil)
	if err == nil {
		t.Fatal("expected error for 404 source")
	}
	if len(store.docs) != 0 {
		t.Errorf("nothing should be upserted on fetch failure, got %d docs", len(store.docs))
	}
}

func Test_NewPipeline_RequiresDependencies(t *testing.T) {
	t.Parallel()
	if _, err := NewPipeline(nil, &captureStore{}, nil); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewPipeline(fakeEmbedder{}, nil, nil); err == nil {
		t.Error("expected error for nil store")
	}
}
