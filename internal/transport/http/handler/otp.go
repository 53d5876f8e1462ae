package handler

import (
	"net/http"

	"github.com/go-label-api/internal/application/otp"
	"github.com/go-label-api/internal/domain"
)

// OTPHandler issues and checks one-time codes for email or phone contacts.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if !decode(w, r, &req) {
		return
	}
	challenge, err := h.svc.Request(r.Context(), req.Contact)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, challenge)
}

// Verify answers 200 only for a verified code; each failed outcome has its
// own status.
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerifyRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Verify(r.Context(), req.SessionID, req.Code)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Verified: true, Channel: res.Channel})
}
