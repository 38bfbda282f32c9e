package assistant

import (
	"strings"

	"github.com/RichieRish05/ImmiAI/internal/marker"
	"github.com/RichieRish05/ImmiAI/internal/rag"
)

// promptIntro establishes the assistant's persona and role.
const promptIntro = `You are a knowledgeable immigration rights assistant. Your role is to help immigrants understand their legal rights when encountering ICE (Immigration and Customs Enforcement) or other immigration authorities.`

// promptPrinciples lists the behavioural ground rules injected into every
// conversation regardless of whether knowledge base context was retrieved.
const promptPrinciples = `Key principles to follow:
- Provide accurate, helpful information about constitutional rights
- Emphasize the right to remain silent and the right to an attorney
- Explain that people have rights regardless of immigration status
- Be supportive and non-judgmental
- Provide practical, actionable advice
- Remind users that this is general information, not legal advice
- Suggest contacting immigration attorneys for specific cases
- Be clear about what documents people are/aren't required to show
- Explain the difference between ICE, police, and other authorities

Always be compassionate, clear, and empowering while providing factual information about rights and procedures.`

// assemblePrompt builds the system prompt for a conversation turn. The
// retrieved context block is included only when the bundle carries text; the
// trailing directive instructs the model to end its response with the source
// marker so the client can render source tags. Output is deterministic for a
// given bundle.
func assemblePrompt(bundle rag.ContextBundle) string {
	var sb strings.Builder
	sb.WriteString(promptIntro)
	sb.WriteString("\n\n")

	if bundle.ContextText != "" {
		sb.WriteString("RELEVANT CONTEXT FROM KNOWLEDGE BASE:\n")
		sb.WriteString(bundle.ContextText)
		sb.WriteString("\n\nUse this context to provide more accurate and detailed responses when relevant.\n\n")
	}

	sb.WriteString(promptPrinciples)
	sb.WriteString("\n\nIMPORTANT: At the very end of your response, add a hidden sources marker like this:\n")
	sb.WriteString(marker.Format(bundle.SourceIDs))
	sb.WriteString("\n\nThis marker will be parsed by the frontend to show source tags.")

	return sb.String()
}
