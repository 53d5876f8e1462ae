package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-label-api/internal/config"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/transport/http/handler"
	appmiddleware "github.com/go-label-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds the application router. ctx bounds the lifetime of the
// rate limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Tokens, deps.Cookies)

	// 5 requests/second, burst of 10, on endpoints that send codes or check secrets.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler(nil)
	otpH := handler.NewOTPHandler(deps.OTP)
	tagH := handler.NewTagHandler(deps.Tags)
	adminH := handler.NewAdminHandler(deps.Admins, deps.Cookies)
	signinH := handler.NewSignInHandler(deps.SignIn, deps.Cookies)

	r.Get("/health", healthH.Status)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// public
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/tags/{id}", tagH.Get)
		r.Post("/tags/{id}/claim", tagH.Claim)
		r.Put("/tags/{id}", tagH.Update)

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/otp/request", otpH.Request)
			r.Post("/otp/verify", otpH.Verify)
			r.Post("/qr-signin/scan", signinH.Scan)
			r.Post("/qr-signin/verify", signinH.VerifyScan)
			r.Post("/qr-signin/signin", signinH.SignInWithTag)
			r.Post("/users/signin", signinH.SignInUser)
		})

		// end users
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireExactRole(domain.RoleUser))
			r.Get("/users/me", signinH.Me)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/login", adminH.Login)

			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/logout", adminH.Logout)
				r.Get("/me", adminH.Me)
				r.Get("/tags", tagH.List)
				r.Post("/tags/generate", tagH.Generate)

				r.Route("/superadmin/admins", func(r chi.Router) {
					r.Use(appmiddleware.RequireRole(domain.RoleSuperadmin))
					r.Post("/", adminH.Create)
					r.Get("/", adminH.List)
					r.Get("/{id}", adminH.Get)
					r.Put("/{id}", adminH.Update)
					r.Delete("/{id}", adminH.Delete)
				})
			})
		})
	})

	return r
}
