package handler

import (
	"net/http"
	"time"

	"github.com/noor-otp-service/internal/infrastructure/smtp"
)

// HealthHandler handles the liveness and SMTP connectivity probes.
type HealthHandler struct {
	mailer smtp.Mailer
}

func NewHealthHandler(mailer smtp.Mailer) *HealthHandler {
	return &HealthHandler{mailer: mailer}
}

type healthEnvelope struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Status reports process liveness.
// GET /api/health
func (h *HealthHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthEnvelope{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// TestSMTP probes the delivery gateway without sending a message, so an
// operator can tell transport trouble apart from bad codes.
// GET /api/test-smtp
func (h *HealthHandler) TestSMTP(w http.ResponseWriter, r *http.Request) {
	if err := h.mailer.Verify(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, Envelope{Success: false, Error: "SMTP connection failed"})
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "SMTP connection verified successfully"})
}
