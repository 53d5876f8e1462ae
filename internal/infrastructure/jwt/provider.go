package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-label-api/internal/config"
	"github.com/go-label-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 32

// Validation failures. Both mean the caller is unauthenticated; they are kept
// apart so clients can tell "log in again" from "this token is garbage".
var (
	ErrTokenExpired   = errors.New("session token expired")
	ErrTokenMalformed = errors.New("session token malformed")
)

// Claims holds the session token payload. Subject is the admin username or
// the identity-provider uid.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Provider issues and validates HS256 session tokens. Tokens are stateless:
// there is no server-side revocation, logout only drops the client copy.
type Provider struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	rec    Recorder
}

// Recorder observes issued and rejected tokens.
type Recorder interface {
	TokenIssued(role domain.Role)
	TokenRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) TokenIssued(domain.Role) {}
func (nopRecorder) TokenRejected(string)    {}

type Option func(*Provider)

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(p *Provider) { p.rec = r }
}

func NewProvider(cfg *config.Config, opts ...Option) (*Provider, error) {
	if len(cfg.SessionTokenSecret) < minSecretLen {
		return nil, fmt.Errorf("session token secret must be at least %d bytes", minSecretLen)
	}
	if cfg.SessionTokenTTL <= 0 {
		return nil, errors.New("session token ttl must be positive")
	}
	p := &Provider{
		secret: []byte(cfg.SessionTokenSecret),
		ttl:    cfg.SessionTokenTTL,
		issuer: "label-api",
		now:    time.Now,
		rec:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) TTL() time.Duration { return p.ttl }

// Issue signs a token for subject with the given role and returns it with its expiry.
func (p *Provider) Issue(subject string, role domain.Role) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("token subject is required: %w", domain.ErrBadRequest)
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}
	now := p.now()
	exp := now.Add(p.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	p.rec.TokenIssued(role)
	return signed, exp, nil
}

// Validate verifies signature, algorithm, expiry and role of tokenStr.
func (p *Provider) Validate(tokenStr string) (*Claims, error) {
	claims, err := p.validate(tokenStr)
	switch {
	case errors.Is(err, ErrTokenExpired):
		p.rec.TokenRejected("expired")
	case err != nil:
		p.rec.TokenRejected("malformed")
	}
	return claims, err
}

func (p *Provider) validate(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMalformed
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(p.issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
