package handler

import (
	"net/http"

	"github.com/go-label-api/internal/application/signin"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/transport/http/middleware"
)

// SignInHandler serves the phone sign-in flows started from a scanned tag
// and the end-user session endpoints.
type SignInHandler struct {
	svc     signin.Service
	cookies SessionCookies
}

func NewSignInHandler(svc signin.Service, cookies SessionCookies) *SignInHandler {
	return &SignInHandler{svc: svc, cookies: cookies}
}

func (h *SignInHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req domain.ScanRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Scan(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *SignInHandler) VerifyScan(w http.ResponseWriter, r *http.Request) {
	var req domain.ScanVerifyRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyScan(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SignInWithTag expects the identity provider's id token as a Bearer header.
func (h *SignInHandler) SignInWithTag(w http.ResponseWriter, r *http.Request) {
	idToken := middleware.BearerToken(r)
	if idToken == "" {
		writeError(w, http.StatusUnauthorized, "missing id token")
		return
	}
	var req domain.TagSignInRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.SignInWithTag(r.Context(), idToken, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	h.startSession(w, r, res)
}

func (h *SignInHandler) SignInUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UserSignInRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.SignInUser(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	h.startSession(w, r, res)
}

func (h *SignInHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.Profile(r.Context(), claims.Subject)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *SignInHandler) startSession(w http.ResponseWriter, r *http.Request, res *signin.SessionResult) {
	if err := h.cookies.Write(w, res.Token, res.ExpiresAt); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
		Tag:       res.Tag,
	})
}
