package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwtinfra "github.com/go-label-api/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator checks a session token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*jwtinfra.Claims, error)
}

// TokenReader extracts a session token from a request, typically a cookie.
type TokenReader interface {
	Read(r *http.Request) (string, error)
}

var errNoToken = errors.New("no session token")

// Auth requires a valid session token. The session cookie is tried first,
// then an "Authorization: Bearer" header, which also covers a stale cookie.
// cookies may be nil.
func Auth(tokens TokenValidator, cookies TokenReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, tokens, cookies)
			if err != nil {
				if errors.Is(err, errNoToken) {
					writeJSONError(w, http.StatusUnauthorized, "missing session token")
					return
				}
				if errors.Is(err, jwtinfra.ErrTokenExpired) {
					writeJSONError(w, http.StatusUnauthorized, "session expired")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "invalid session token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate returns the claims of the first valid token. When no token
// validates, the error of the last one tried is returned.
func authenticate(r *http.Request, tokens TokenValidator, cookies TokenReader) (*jwtinfra.Claims, error) {
	err := errNoToken
	if cookies != nil {
		if token, rerr := cookies.Read(r); rerr == nil && token != "" {
			var claims *jwtinfra.Claims
			if claims, err = tokens.Validate(token); err == nil {
				return claims, nil
			}
		}
	}
	if token := BearerToken(r); token != "" {
		return tokens.Validate(token)
	}
	return nil, err
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ClaimsFromContext retrieves validated claims injected by Auth.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// WithClaims returns ctx carrying claims, as Auth would.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
