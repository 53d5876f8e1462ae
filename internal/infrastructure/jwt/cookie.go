package jwtinfra

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-label-api/internal/config"
	"github.com/gorilla/securecookie"
)

// CookieCodec carries session tokens in an HttpOnly cookie. The value is
// HMAC-signed and, when a block key is configured, AES-encrypted.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	name   string
	secure bool
	maxAge int
}

func NewCookieCodec(cfg *config.Config) (*CookieCodec, error) {
	hashKey := []byte(cfg.CookieHashKey)
	if len(hashKey) == 0 {
		hashKey = []byte(cfg.SessionTokenSecret)
	}
	if len(hashKey) < minSecretLen {
		return nil, fmt.Errorf("cookie hash key must be at least %d bytes", minSecretLen)
	}
	var blockKey []byte
	if cfg.CookieBlockKey != "" {
		blockKey = []byte(cfg.CookieBlockKey)
		switch len(blockKey) {
		case 16, 24, 32:
		default:
			return nil, errors.New("cookie block key must be 16, 24 or 32 bytes")
		}
	}
	maxAge := int(cfg.SessionTokenTTL / time.Second)
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(maxAge)
	return &CookieCodec{sc: sc, name: cfg.SessionCookieName, secure: cfg.CookieSecure, maxAge: maxAge}, nil
}

func (c *CookieCodec) Name() string { return c.name }

// Write sets the session cookie for token, expiring with it.
func (c *CookieCodec) Write(w http.ResponseWriter, token string, expiresAt time.Time) error {
	encoded, err := c.sc.Encode(c.name, token)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   c.maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Read returns the token carried by the request cookie. It returns
// http.ErrNoCookie when absent and ErrTokenMalformed when tampered with.
func (c *CookieCodec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", http.ErrNoCookie
	}
	var token string
	if err := c.sc.Decode(c.name, cookie.Value, &token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return token, nil
}

// Clear expires the session cookie on the client.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
