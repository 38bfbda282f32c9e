// Package translate implements legal document translation: text is extracted
// from an uploaded PDF and translated to a target language by the configured
// chat model, preserving legal terminology and document structure.
// It backs the POST /api/translate-pdf endpoint.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var (
	// ErrInvalidPDF means the upload could not be parsed as a PDF document.
	ErrInvalidPDF = errors.New("translate: not a valid PDF document")

	// ErrNoText means the document parsed but contained no extractable text
	// (e.g. a scanned image without an OCR layer).
	ErrNoText = errors.New("translate: no readable text found in the PDF")
)

// Result holds the outcome of a document translation.
type Result struct {
	// OriginalText is the text extracted from the uploaded document.
	OriginalText string

	// TranslatedText is the model's translation of OriginalText.
	TranslatedText string
}

// Translator translates legal document text using a chat model.
// It is immutable after construction and safe for concurrent use.
type Translator struct {
	chatModel model.ToolCallingChatModel
}

// New constructs a Translator backed by the given chat model.
func New(chatModel model.ToolCallingChatModel) (*Translator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("translate: chat model must not be nil")
	}
	return &Translator{chatModel: chatModel}, nil
}

// TranslatePDF extracts the text from a PDF document and translates it to the
// target language. The document is read via doc/size so multipart uploads can
// be passed through without buffering a copy.
func (t *Translator) TranslatePDF(ctx context.Context, doc io.ReaderAt, size int64, targetLanguage string) (*Result, error) {
	text, err := extractText(doc, size)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrNoText
	}

	translated, err := t.Translate(ctx, text, targetLanguage)
	if err != nil {
		return nil, err
	}

	return &Result{OriginalText: text, TranslatedText: translated}, nil
}

// Translate translates already-extracted text to the target language.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}

	prompt := translationPrompt(text, targetLanguage)
	resp, err := t.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("translate: generation failed: %w", err)
	}

	return strings.TrimSpace(resp.Content), nil
}

// translationPrompt renders the fixed legal translation instruction block for
// the given text and target language. Deterministic for equal inputs.
func translationPrompt(text, targetLanguage string) string {
	var b strings.Builder
	b.WriteString("Please translate the following legal text into " + targetLanguage + ".\n\n")
	b.WriteString(`IMPORTANT INSTRUCTIONS:
- Preserve all legal terminology and technical terms accurately
- Maintain the original formatting, structure, and document layout
- Keep all numbers, dates, names, and addresses exactly as they appear
- Preserve any legal citations, case numbers, or reference codes
- Maintain the formal tone appropriate for legal documents
- If any text appears to be in a different language, translate it to ` + targetLanguage + ` as well
- If you encounter unclear or illegible text, indicate it with [UNREADABLE] and continue with the rest
- Preserve any headers, footers, or document metadata
- Keep all punctuation and capitalization consistent with legal document standards

FORMATTING REQUIREMENTS:
- Use clear paragraph breaks with double line spacing
- Preserve any section headers or titles
- Format lists with proper bullet points or numbering
- Maintain any table structures or tabular data
- Use proper indentation for subsections
- Add clear section separators where appropriate
- Format any legal citations or references consistently

TEXT TO TRANSLATE:
`)
	b.WriteString(text)
	b.WriteString("\n\nPlease provide the complete translation in " + targetLanguage + " with proper formatting and structure.")
	return b.String()
}
