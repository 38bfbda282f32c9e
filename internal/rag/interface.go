// Package rag defines the interfaces for retrieval-augmented generation
// components: vector storage, context retrieval, and embedding.
// Concrete implementations (Qdrant, etc.) satisfy these interfaces so the
// assistant layer never depends on a specific backend.
package rag

import (
	"context"
)

// Origin identifies where the context in a ContextBundle came from.
type Origin string

const (
	// OriginNone means no context was retrieved: the vector store is not
	// configured, returned nothing relevant, or failed. All three collapse
	// into the same state so downstream fallback behaviour is uniform.
	OriginNone Origin = "none"

	// OriginVectorStore means the context came from a vector similarity search.
	OriginVectorStore Origin = "vector-store"

	// OriginFallback means the context is the static fallback knowledge block.
	OriginFallback Origin = "fallback"
)

// ContextBundle is the output of context retrieval: the joined passage texts
// and the identifiers of the passages they came from. A bundle is built once
// per request and never mutated afterwards.
//
// Invariant: SourceIDs is empty iff ContextText is empty iff Origin is
// OriginNone.
type ContextBundle struct {
	// ContextText is the blank-line-joined text of the retrieved passages.
	ContextText string

	// SourceIDs holds the passage identifiers in the same order as their
	// texts appear in ContextText.
	SourceIDs []string

	// Origin records where the context came from.
	Origin Origin
}

// Document represents a unit of retrieved or stored knowledge.
type Document struct {
	// ID is the unique identifier for this document chunk.
	ID string

	// Content is the raw text content of the chunk.
	Content string

	// Source is the origin URI of the document.
	Source string

	// Metadata holds arbitrary key-value pairs (topic, language, etc.).
	Metadata map[string]string

	// Score is the similarity score assigned during retrieval (0.0–1.0).
	// Zero value means the score was not computed.
	Score float32
}

// VectorStore is the interface for persisting and searching document embeddings.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores or updates a batch of documents with their pre-computed embeddings.
	// The embeddings slice must be parallel to docs — embeddings[i] is the vector for docs[i].
	Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error

	// Search performs a semantic similarity search and returns the top-k
	// most relevant documents for the given query embedding, highest
	// similarity first.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface used by the assistant to fetch
// relevant context for a user query. Retrieval is best-effort: implementations
// never return an error — any internal failure yields an empty bundle so a
// broken or slow knowledge backend can never block a chat response.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the context bundle for the given query.
	Retrieve(ctx context.Context, query string) ContextBundle
}
