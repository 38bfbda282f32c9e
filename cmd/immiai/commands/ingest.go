package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/RichieRish05/ImmiAI/internal/embedder"
	"github.com/RichieRish05/ImmiAI/internal/ingestion"
	"github.com/RichieRish05/ImmiAI/internal/rag"
)

// NewIngestCmd constructs the `immiai ingest` command, which runs the
// knowledge base ingestion pipeline to populate the vector store.
func NewIngestCmd() *cobra.Command {
	var topic string
	var organization string
	var urls []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest know-your-rights material into the vector store",
		Long: `Fetch and index know-your-rights documentation into the Qdrant vector store.

Ingested material is used to ground the assistant's answers in verified
sources from immigration advocacy and government organizations.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: immigration-kb)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  MODEL_PROVIDER       Embedding backend: ollama, openai, azure (default: openai)
  EMBEDDING_*          Provider-specific overrides (see README)

Metadata flags (--topic, --organization) are optional. When omitted, metadata
is auto-inferred from the URL (e.g. ilrc.org URLs resolve the organization
automatically). Explicit flags override inference.

Examples:
  immiai ingest --url https://www.ilrc.org/red-cards
  immiai ingest --url https://www.nilc.org/issues/immigration-enforcement/everyone-has-certain-basic-rights/
  immiai ingest --topic home-visits --url https://example.org/custom-warrant-guide`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			if len(urls) == 0 {
				return fmt.Errorf("ingest: at least one --url is required")
			}

			if err := embedder.ValidateForRAG(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised", slog.String("provider", getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "openai"))))

			qdrantHost := getEnvOrDefault("QDRANT_HOST", "localhost")
			qdrantPort := getEnvInt("QDRANT_PORT", 6334)
			collection := getEnvOrDefault("QDRANT_COLLECTION", "immigration-kb")
			embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "openai"))
			vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

			store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
				Host:       qdrantHost,
				Port:       qdrantPort,
				Collection: collection,
				VectorSize: vectorSize,
				APIKey:     os.Getenv("QDRANT_API_KEY"),
				UseTLS:     os.Getenv("QDRANT_TLS") == "true",
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to connect to Qdrant at %s:%d: %w", qdrantHost, qdrantPort, err)
			}
			defer store.Close()
			log.Info("qdrant store ready", slog.String("host", qdrantHost), slog.Int("port", qdrantPort), slog.String("collection", collection))

			pipeline, err := ingestion.NewPipeline(emb, store, nil)
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			topicSet := cmd.Flags().Changed("topic")
			orgSet := cmd.Flags().Changed("organization")

			sources := make([]ingestion.Source, 0, len(urls))
			for _, u := range urls {
				inferred := ingestion.InferMetadata(u)

				src := ingestion.Source{URL: u}
				if topicSet {
					src.Topic = topic
				} else {
					src.Topic = inferred.Topic
				}
				if orgSet {
					src.Organization = organization
				} else {
					src.Organization = inferred.Organization
				}

				log.Info("source metadata",
					slog.String("url", u),
					slog.String("topic", src.Topic),
					slog.String("organization", src.Organization),
				)
				sources = append(sources, src)
			}

			log.Info("starting ingestion", slog.Int("sources", len(sources)))

			if err := pipeline.Ingest(ctx, sources, func(msg string) {
				log.Info(msg)
			}); err != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", err)
			}

			log.Info("ingestion complete", slog.Int("sources", len(sources)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "general", "Content topic (basic-rights, home-visits, documents, workplace-rights, general)")
	cmd.Flags().StringVarP(&organization, "organization", "o", "generic", "Publishing organization (ilrc, nilc, aclu, uscis, generic)")
	cmd.Flags().StringArrayVarP(&urls, "url", "u", nil, "Source URL to ingest (repeatable)")

	return cmd
}
