package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-label-api/internal/application/tag"
	"github.com/go-label-api/internal/domain"
)

// TagHandler serves the public tag endpoints and the admin tag inventory.
type TagHandler struct {
	svc tag.Service
}

func NewTagHandler(svc tag.Service) *TagHandler { return &TagHandler{svc: svc} }

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req domain.ClaimTagRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.Claim(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTagRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	tags, next, err := h.svc.List(r.Context(), limit, q.Get("cursor"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	writeJSON(w, http.StatusOK, TagPageEnvelope{Data: tags, NextCursor: next})
}

func (h *TagHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateTagsRequest
	if !decode(w, r, &req) {
		return
	}
	generated, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, GeneratedTagsEnvelope{Data: generated})
}
