package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-label-api/internal/domain"
	jwtinfra "github.com/go-label-api/internal/infrastructure/jwt"
	"github.com/go-label-api/internal/pkg/validate"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// TagPageEnvelope wraps one page of the admin tag listing.
type TagPageEnvelope struct {
	Data       []domain.Tag `json:"data"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type GeneratedTagsEnvelope struct {
	Data []domain.GeneratedTag `json:"data"`
}

type AdminsEnvelope struct {
	Data []domain.Admin `json:"data"`
}

// VerifyEnvelope reports a successful code verification.
type VerifyEnvelope struct {
	Verified bool           `json:"verified"`
	Channel  domain.Channel `json:"channel,omitempty"`
}

// SessionEnvelope is returned by every endpoint that starts a session. The
// token is also set as a cookie; the body copy serves clients without one.
type SessionEnvelope struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *domain.User  `json:"user,omitempty"`
	Admin     *domain.Admin `json:"admin,omitempty"`
	Tag       *domain.Tag   `json:"tag,omitempty"`
}

// SessionCookies writes and clears the session cookie.
type SessionCookies interface {
	Write(w http.ResponseWriter, token string, expiresAt time.Time) error
	Clear(w http.ResponseWriter)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler should go on.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// httpError maps domain sentinels to status codes. Anything unrecognized is
// logged and reported as a bare 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, MessageEnvelope{Error: "internal error", ErrorCode: code})
		return
	}
	writeJSON(w, status, MessageEnvelope{Error: err.Error(), ErrorCode: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrCodeMismatch):
		return http.StatusUnauthorized, "code_mismatch"
	case errors.Is(err, jwtinfra.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, jwtinfra.ErrTokenMalformed):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadyUsed):
		return http.StatusConflict, "already_used"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusGone, "session_expired"
	case errors.Is(err, domain.ErrDelivery):
		return http.StatusBadGateway, "delivery_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
