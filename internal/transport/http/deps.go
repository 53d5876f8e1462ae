package http

import (
	"net/http"

	"github.com/go-label-api/internal/application/admin"
	"github.com/go-label-api/internal/application/otp"
	"github.com/go-label-api/internal/application/signin"
	"github.com/go-label-api/internal/application/tag"
	"github.com/go-label-api/internal/transport/http/handler"
	appmiddleware "github.com/go-label-api/internal/transport/http/middleware"
	"github.com/rs/zerolog"
)

// SessionCookies reads, writes and clears the session cookie.
type SessionCookies interface {
	appmiddleware.TokenReader
	handler.SessionCookies
}

// Deps holds the application services and HTTP plumbing the router mounts.
type Deps struct {
	OTP    otp.Service
	Tags   tag.Service
	Admins admin.Service
	SignIn signin.Service

	Tokens  appmiddleware.TokenValidator
	Cookies SessionCookies
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	Logger  zerolog.Logger
}
