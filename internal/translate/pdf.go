package translate

import (
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractText pulls the plain text out of a PDF document, page by page,
// joined with newlines. Pages whose text cannot be decoded are skipped rather
// than failing the whole document.
func extractText(doc io.ReaderAt, size int64) (text string, err error) {
	// The PDF parser panics on some malformed inputs; convert those to an error.
	defer func() {
		if recover() != nil {
			text, err = "", ErrInvalidPDF
		}
	}()

	reader, err := pdf.NewReader(doc, size)
	if err != nil {
		return "", ErrInvalidPDF
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, content)
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}
