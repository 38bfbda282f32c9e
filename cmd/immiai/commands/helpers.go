package commands

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"

	"github.com/RichieRish05/ImmiAI/internal/embedder"
	"github.com/RichieRish05/ImmiAI/internal/rag"
	"github.com/RichieRish05/ImmiAI/internal/server"
)

// buildRetriever constructs the RAG retriever from env configuration.
// When QDRANT_HOST is unset the vector backend is considered unconfigured:
// a retriever that always returns an empty bundle is used and the returned
// store is nil. Retrieval configuration errors (bad embedder credentials,
// unreachable Qdrant) are fatal so operators notice them at startup rather
// than as silently context-free answers.
func buildRetriever(ctx context.Context, log *slog.Logger) (rag.Retriever, *rag.QdrantStore, func(), error) {
	noop := func() {}

	if os.Getenv("QDRANT_HOST") == "" {
		log.Info("rag: QDRANT_HOST not set, retrieval disabled")
		return rag.NewContextRetriever(nil, nil, nil), nil, noop, nil
	}

	if err := embedder.ValidateForRAG(log); err != nil {
		return nil, nil, noop, err
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, nil, noop, err
	}

	embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "openai"))
	vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

	store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		Collection: getEnvOrDefault("QDRANT_COLLECTION", "immigration-kb"),
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, nil, noop, err
	}

	retriever := rag.NewContextRetriever(emb, store, nil)
	return retriever, store, func() { store.Close() }, nil
}

// buildPingers assembles the readiness probes for GET /api/ready. The LLM
// backend is always probed; Qdrant only when the vector store is configured.
func buildPingers(chatModel model.ToolCallingChatModel, store *rag.QdrantStore) []server.Pinger {
	backend := getEnvOrDefault("MODEL_PROVIDER", "openai")
	pingers := []server.Pinger{
		server.NewLLMPinger(chatModel, backend),
	}
	if store != nil {
		pingers = append(pingers, server.NewQdrantPinger(store.Client()))
	}
	return pingers
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
