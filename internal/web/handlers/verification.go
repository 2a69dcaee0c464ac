package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/rollmark/rollmark/internal/verification"
)

// VerificationHandler handles e-mail verification code endpoints.
type VerificationHandler struct {
	service *verification.Service
}

// NewVerificationHandler creates a new verification handler.
func NewVerificationHandler(svc *verification.Service) *VerificationHandler {
	return &VerificationHandler{service: svc}
}

// SendRequest asks for a code to be delivered to an address.
type SendRequest struct {
	Email string `json:"email"`
}

// Send issues and delivers a verification code.
func (h *VerificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.service.Issue(r.Context(), req.Email); err != nil {
		log.Printf("failed to issue verification code: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to send verification code")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyRequest checks a previously delivered code.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify consumes a verification code.
func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Email == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	ok, err := h.service.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		log.Printf("failed to verify code: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to verify code")
		return
	}
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
