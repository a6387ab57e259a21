package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/noor-otp-service/internal/domain"
)

// Envelope is the response wrapper every endpoint uses. The field set
// mirrors what the web client already expects: success plus either a
// message or an error, with attemptsLeft / user / email on the relevant
// verification branches.
type Envelope struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message,omitempty"`
	Error        string       `json:"error,omitempty"`
	AttemptsLeft *int         `json:"attemptsLeft,omitempty"`
	User         *UserPayload `json:"user,omitempty"`
	Email        string       `json:"email,omitempty"`
}

// UserPayload identifies the verified account in success responses.
type UserPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Error: msg})
}

// verifyError maps a verification failure onto the client-facing wire shape.
// Not-found and expired share one message on purpose: the response must not
// reveal which emails have pending codes. Anything unrecognized becomes a
// 500 with the endpoint's generic message, never the raw error.
func verifyError(w http.ResponseWriter, err error, fallback string) {
	var ice *domain.InvalidCodeError
	switch {
	case errors.As(err, &ice):
		left := ice.AttemptsLeft
		writeJSON(w, http.StatusBadRequest, Envelope{Error: "Invalid OTP", AttemptsLeft: &left})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusBadRequest, "OTP not found or expired")
	case errors.Is(err, domain.ErrWrongPurpose):
		writeError(w, http.StatusBadRequest, "Invalid OTP type")
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusBadRequest, "Too many failed attempts")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "Invalid request")
	default:
		slog.Error("verification failed unexpectedly", "err", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
