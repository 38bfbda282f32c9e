package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/RichieRish05/ImmiAI/internal/logging"
)

const (
	// searchTopK is the number of nearest neighbours requested per query.
	searchTopK = 5

	// minSimilarity is the relevance floor. Passages must score strictly
	// above it to be included — a passage at exactly the floor is discarded.
	minSimilarity = 0.70

	// defaultSearchTimeout bounds the caller's wait on the vector search.
	// The timer races the search; firing it abandons the wait but does not
	// cancel the in-flight provider call.
	defaultSearchTimeout = 10 * time.Second
)

// ContextRetriever implements Retriever by combining an Embedder and a
// VectorStore. It embeds the query, searches for the top-k passages, and
// filters them by similarity. Every failure mode — embedding error, search
// error, timeout — is absorbed into an empty bundle so retrieval can never
// fail a chat request.
type ContextRetriever struct {
	// embedder converts query text to a dense vector.
	embedder Embedder

	// store performs the vector similarity search. A nil store means the
	// vector backend is not configured; retrieval is skipped entirely.
	store VectorStore

	// searchTimeout is the wall-clock budget for the search call.
	searchTimeout time.Duration
}

// RetrieverConfig holds the optional settings for a ContextRetriever.
type RetrieverConfig struct {
	// SearchTimeout overrides the 10s default wall-clock search budget.
	// Intended for tests; production callers should leave it zero.
	SearchTimeout time.Duration
}

// NewContextRetriever constructs a ContextRetriever. A nil store is permitted
// and puts the retriever into the unconfigured path: every Retrieve call
// returns an empty bundle without touching the embedder.
func NewContextRetriever(embedder Embedder, store VectorStore, cfg *RetrieverConfig) *ContextRetriever {
	timeout := defaultSearchTimeout
	if cfg != nil && cfg.SearchTimeout > 0 {
		timeout = cfg.SearchTimeout
	}
	return &ContextRetriever{
		embedder:      embedder,
		store:         store,
		searchTimeout: timeout,
	}
}

// Retrieve embeds the query, searches the vector store, and returns the
// passages scoring above the similarity floor as a single bundle.
// It never returns an error: an empty bundle with OriginNone stands in for
// "not configured", "nothing relevant", and "retrieval failed" alike.
func (r *ContextRetriever) Retrieve(ctx context.Context, query string) ContextBundle {
	log := logging.FromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return ContextBundle{Origin: OriginNone}
	}

	if r.store == nil || r.embedder == nil {
		// Configuration absence, not a failure — logged below error level so
		// operators can tell it apart from a runtime fault.
		log.Debug("rag: vector store not configured, skipping retrieval")
		return ContextBundle{Origin: OriginNone}
	}

	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(embeddings) == 0 {
		log.Warn("rag: embedding failed, continuing without context", slog.Any("error", err))
		return ContextBundle{Origin: OriginNone}
	}

	docs, err := r.search(ctx, embeddings[0])
	if err != nil {
		log.Warn("rag: vector search failed, continuing without context", slog.Any("error", err))
		return ContextBundle{Origin: OriginNone}
	}

	var texts []string
	var ids []string
	for _, doc := range docs {
		if doc.Score > minSimilarity && doc.Content != "" {
			texts = append(texts, doc.Content)
			ids = append(ids, doc.ID)
		}
	}

	if len(texts) == 0 {
		log.Debug("rag: no passages above similarity floor", slog.Int("candidates", len(docs)))
		return ContextBundle{Origin: OriginNone}
	}

	log.Debug("rag: retrieved context",
		slog.Int("passages", len(texts)),
		slog.Int("candidates", len(docs)),
	)

	return ContextBundle{
		ContextText: strings.Join(texts, "\n\n"),
		SourceIDs:   ids,
		Origin:      OriginVectorStore,
	}
}

// searchResult carries the outcome of the asynchronous search call.
type searchResult struct {
	docs []Document
	err  error
}

// search races the store's Search call against the configured timeout.
// On timeout the provider call is left running (fire-and-forget); only the
// caller's wait is abandoned.
func (r *ContextRetriever) search(ctx context.Context, embedding []float32) ([]Document, error) {
	resCh := make(chan searchResult, 1)

	go func() {
		docs, err := r.store.Search(ctx, embedding, searchTopK)
		resCh <- searchResult{docs: docs, err: err}
	}()

	timer := time.NewTimer(r.searchTimeout)
	defer timer.Stop()

	select {
	case res := <-resCh:
		return res.docs, res.err
	case <-timer.C:
		return nil, context.DeadlineExceeded
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
