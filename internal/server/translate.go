package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/RichieRish05/ImmiAI/internal/logging"
	"github.com/RichieRish05/ImmiAI/internal/translate"
)

// maxUploadBytes caps the accepted document size. Legal notices run a few
// pages; 20 MB leaves room for scanned-and-OCRed files.
const maxUploadBytes = 20 << 20

// handleTranslatePDF handles POST /api/translate-pdf. It accepts a multipart
// form with a "file" PDF part and a "target_language" field, extracts the
// document text, and returns it alongside the model's translation.
func (s *Server) handleTranslatePDF(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Translator == nil {
		logging.FromContext(r.Context()).Error("translation requested but translator is not configured")
		writeJSONError(w, http.StatusInternalServerError, "Translation service not configured", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid multipart form", "")
		return
	}

	targetLanguage := r.FormValue("target_language")
	file, header, err := r.FormFile("file")
	if err != nil || targetLanguage == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields: file and target_language", "")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/pdf" {
		writeJSONError(w, http.StatusBadRequest, "Only PDF files are supported", "")
		return
	}

	res, err := s.cfg.Translator.TranslatePDF(r.Context(), file, header.Size, targetLanguage)
	if err != nil {
		switch {
		case errors.Is(err, translate.ErrInvalidPDF):
			writeJSONError(w, http.StatusBadRequest, "Only PDF files are supported", "")
		case errors.Is(err, translate.ErrNoText):
			writeJSONError(w, http.StatusBadRequest, "No readable text found in the PDF", "")
		default:
			logging.FromContext(r.Context()).Error("translation failed", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "Translation failed", err.Error())
		}
		return
	}

	logging.FromContext(r.Context()).Info("document translated",
		slog.String("target_language", targetLanguage),
		slog.Int("original_chars", len(res.OriginalText)),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(translateResponse{
		Success:        true,
		TranslatedText: res.TranslatedText,
		Text:           res.OriginalText,
	})
}
