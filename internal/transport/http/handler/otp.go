package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/noor-otp-service/internal/application/otp"
	"github.com/noor-otp-service/internal/domain"
	"github.com/noor-otp-service/internal/pkg/validate"
)

// OTPHandler exposes the issuance and verification flows over HTTP.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

type issueRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Name  string `json:"name"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// Send issues an email-verification code.
// POST /api/send-otp
func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, domain.PurposeEmailVerification,
		"OTP sent successfully",
		"Failed to send OTP")
}

// ForgotPassword issues a password-reset code.
// POST /api/forgot-password
func (h *OTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, domain.PurposePasswordReset,
		"Password reset OTP sent successfully",
		"Failed to send password reset email. Please try again.")
}

func (h *OTPHandler) issue(w http.ResponseWriter, r *http.Request, purpose domain.Purpose, okMsg, failMsg string) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	err := h.svc.Issue(r.Context(), otp.IssueRequest{
		Email:   req.Email,
		Name:    req.Name,
		Purpose: purpose,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDelivery) {
			slog.Error("OTP issuance failed", "email", req.Email, "err", err)
		}
		writeError(w, http.StatusInternalServerError, failMsg)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: okMsg})
}

// Verify checks an email-verification code and consumes it on success.
// POST /api/verify-otp
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		writeError(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	res, err := h.svc.Verify(r.Context(), otp.VerifyRequest{
		Email:   req.Email,
		Code:    req.OTP,
		Purpose: domain.PurposeEmailVerification,
	})
	if err != nil {
		verifyError(w, err, "Failed to verify OTP")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "OTP verified successfully",
		User:    &UserPayload{Email: res.Email, Name: res.DisplayName},
	})
}

// ResetPassword checks a password-reset code and consumes it on success.
// The password itself is updated by the caller once this endpoint vouches
// for the email; the new password is only screened for minimum length here,
// before the store is touched at all.
// POST /api/reset-password
func (h *OTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Email, OTP, and new password are required")
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	res, err := h.svc.Verify(r.Context(), otp.VerifyRequest{
		Email:   req.Email,
		Code:    req.OTP,
		Purpose: domain.PurposePasswordReset,
	})
	if err != nil {
		verifyError(w, err, "Failed to reset password")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "OTP verified successfully. You can now reset your password.",
		Email:   res.Email,
	})
}
