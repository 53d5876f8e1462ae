package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-label-api/internal/application/admin"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/transport/http/middleware"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles admin login and superadmin account management.
type AdminHandler struct {
	svc     admin.Service
	cookies SessionCookies
}

func NewAdminHandler(svc admin.Service, cookies SessionCookies) *AdminHandler {
	return &AdminHandler{svc: svc, cookies: cookies}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.cookies.Write(w, res.Token, res.ExpiresAt); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Token: res.Token, ExpiresAt: res.ExpiresAt, Admin: res.Admin})
}

// Logout only drops the cookie; issued tokens stay valid until they expire.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		log.Ctx(r.Context()).Info().Str("admin", claims.Subject).Msg("admin logged out")
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.Me(r.Context(), claims.Subject)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdminRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	if admins == nil {
		admins = []domain.Admin{}
	}
	writeJSON(w, http.StatusOK, AdminsEnvelope{Data: admins})
}

func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateAdminRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.svc.Update(r.Context(), claims.Subject, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.Subject, chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
