package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/RichieRish05/ImmiAI/internal/logging"
	"github.com/RichieRish05/ImmiAI/internal/mailer"
)

// dataURLPrefix matches the data URL header browsers prepend to base64 video
// payloads (data:video/webm;base64,).
var dataURLPrefix = regexp.MustCompile(`^data:video/[^;]+;base64,`)

// handleEmergencyVideo handles POST /api/emergency-video. It forwards a
// panic-mode recording to the user's attorney as an email attachment.
func (s *Server) handleEmergencyVideo(w http.ResponseWriter, r *http.Request) {
	var req emergencyVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.VideoBase64 == "" || req.LawyerEmail == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields: videoBase64 and lawyerEmail", "")
		return
	}

	if s.cfg.Mailer == nil {
		logging.FromContext(r.Context()).Error("emergency video requested but mailer is not configured")
		writeJSONError(w, http.StatusInternalServerError, "Email service not configured", "")
		return
	}

	content := dataURLPrefix.ReplaceAllString(req.VideoBase64, "")

	recordedAt := time.UnixMilli(req.Timestamp)
	if req.Timestamp == 0 {
		recordedAt = time.Now()
	}
	filename := recordingFilename(recordedAt)

	id, err := s.cfg.Mailer.Send(r.Context(), &mailer.Email{
		To:      []string{req.LawyerEmail},
		Subject: "EMERGENCY: Immigration Rights Recording",
		HTML:    emergencyEmailBody(recordedAt, filename),
		Attachments: []mailer.Attachment{
			{Filename: filename, Content: content, ContentType: "video/webm"},
		},
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("emergency video send failed", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to send emergency video", err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("emergency video sent",
		slog.String("message_id", id),
		slog.String("file", filename),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(emergencyVideoResponse{
		Success:   true,
		MessageID: id,
		Message:   "Emergency video sent successfully",
	})
}

// recordingFilename derives the attachment name from the recording time,
// with colons and dots replaced so the name is filesystem-safe everywhere.
func recordingFilename(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "emergency-recording-" + stamp + ".webm"
}

// emergencyEmailBody renders the HTML body for the attorney notification.
func emergencyEmailBody(recordedAt time.Time, filename string) string {
	var sb strings.Builder
	sb.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	sb.WriteString(`<div style="background-color: #dc2626; color: white; padding: 20px; text-align: center;">`)
	sb.WriteString(`<h1 style="margin: 0; font-size: 24px;">EMERGENCY RECORDING</h1></div>`)
	sb.WriteString(`<div style="padding: 20px; background-color: #f9f9f9;">`)
	sb.WriteString(`<h2 style="color: #dc2626; margin-top: 0;">Immigration Rights Emergency</h2>`)
	sb.WriteString(`<p><strong>This is an automated emergency message from the Immigration Rights Assistant.</strong></p>`)
	sb.WriteString(`<div style="background-color: white; padding: 15px; border-left: 4px solid #dc2626; margin: 20px 0;">`)
	sb.WriteString(`<p><strong>Recording Details:</strong></p><ul>`)
	fmt.Fprintf(&sb, `<li><strong>Timestamp:</strong> %s</li>`, recordedAt.Format(time.RFC1123))
	fmt.Fprintf(&sb, `<li><strong>File:</strong> %s</li>`, filename)
	sb.WriteString(`<li><strong>Type:</strong> Emergency video recording</li></ul></div>`)
	sb.WriteString(`<p>A video recording has been attached to this email. This recording was initiated using the panic mode feature of the Immigration Rights Assistant app.</p>`)
	sb.WriteString(`<div style="background-color: #fef3c7; padding: 15px; border-radius: 5px; margin: 20px 0;">`)
	sb.WriteString(`<p style="margin: 0;"><strong>URGENT:</strong> Please review this recording immediately and take appropriate legal action if necessary.</p></div>`)
	sb.WriteString(`<h3>Immediate Actions to Consider:</h3><ul>`)
	sb.WriteString(`<li>Review the video recording for any rights violations</li>`)
	sb.WriteString(`<li>Contact your client immediately if possible</li>`)
	sb.WriteString(`<li>Document any evidence of misconduct</li>`)
	sb.WriteString(`<li>Consider filing complaints with appropriate authorities</li>`)
	sb.WriteString(`<li>Prepare for potential legal proceedings</li></ul>`)
	sb.WriteString(`<p style="font-size: 14px; color: #6b7280;">If you received this email in error, please contact the sender immediately.</p></div>`)
	sb.WriteString(`<div style="background-color: #374151; color: white; padding: 15px; text-align: center; font-size: 12px;">`)
	sb.WriteString(`<p style="margin: 0;">Immigration Rights Assistant - Emergency Recording Service</p></div></div>`)
	return sb.String()
}
