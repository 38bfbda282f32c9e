package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/RichieRish05/ImmiAI/internal/assistant"
	"github.com/RichieRish05/ImmiAI/internal/fallback"
	"github.com/RichieRish05/ImmiAI/internal/logging"
	"github.com/RichieRish05/ImmiAI/internal/mailer"
	"github.com/RichieRish05/ImmiAI/internal/provider"
	"github.com/RichieRish05/ImmiAI/internal/reports"
	"github.com/RichieRish05/ImmiAI/internal/server"
	"github.com/RichieRish05/ImmiAI/internal/tracing"
	"github.com/RichieRish05/ImmiAI/internal/translate"
)

// NewServeCmd constructs the `immiai serve` command, which starts the HTTP
// server exposing the chat, reports, and emergency-video APIs.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ImmiAI HTTP server",
		Long: `Start the ImmiAI HTTP server on localhost.

The server exposes a REST/SSE API: streaming chat grounded in the
immigration rights knowledge base, community activity reports, and
emergency recording forwarding to a designated attorney.

Examples:
  immiai serve
  immiai serve --port 9090
  MODEL_PROVIDER=gemini immiai serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", getEnvOrDefault("MODEL_PROVIDER", "openai")))

			retriever, qdrantStore, closeRetriever, err := buildRetriever(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer closeRetriever()

			selector, err := fallback.NewSelector(fallbackKeywords())
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			asst, err := assistant.New(&assistant.Config{
				ChatModel: chatModel,
				Retriever: retriever,
				Fallback:  selector,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to initialise assistant: %w", err)
			}

			translator, err := translate.New(chatModel)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise translator: %w", err)
			}

			// Open the activity report store. REPORTS_DB overrides the default
			// path (~/.immiai/reports.db). Set to "disabled" to disable.
			var reportStore reports.Store
			dbPath := os.Getenv("REPORTS_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = reports.DefaultDBPath()
					if err != nil {
						log.Warn("reports: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					rs, rsErr := reports.Open(dbPath)
					if rsErr != nil {
						log.Warn("reports: failed to open store, disabling", slog.Any("error", rsErr))
					} else {
						reportStore = rs
						defer func() { _ = rs.Close() }()
						log.Info("reports: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("reports: disabled via REPORTS_DB=disabled")
			}

			// Emergency video forwarding needs Resend credentials; without them
			// the endpoint returns a configuration error.
			var mailClient *mailer.Client
			if os.Getenv("RESEND_API_KEY") != "" {
				mailClient, err = mailer.New(&mailer.Config{
					APIKey: os.Getenv("RESEND_API_KEY"),
					From:   os.Getenv("RESEND_FROM_EMAIL"),
				})
				if err != nil {
					return fmt.Errorf("serve: failed to initialise mailer: %w", err)
				}
				log.Info("mailer: resend client ready")
			} else {
				log.Warn("mailer: RESEND_API_KEY not set, emergency video forwarding disabled")
			}

			pingers := buildPingers(chatModel, qdrantStore)

			srv, err := server.New(asst, &server.Config{
				Host:       host,
				Port:       port,
				Logger:     log,
				Pingers:    pingers,
				APIKey:     os.Getenv("IMMIAI_API_KEY"),
				Reports:    reportStore,
				Mailer:     mailClient,
				Translator: translator,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}

// fallbackKeywords parses FALLBACK_KEYWORDS as a comma-separated list.
// Returns nil when unset so the selector falls back to its defaults.
func fallbackKeywords() []string {
	raw := os.Getenv("FALLBACK_KEYWORDS")
	if raw == "" {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
