package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-label-api/internal/application/admin"
	"github.com/go-label-api/internal/config"
	"github.com/go-label-api/internal/domain"
	jwtinfra "github.com/go-label-api/internal/infrastructure/jwt"
	"github.com/go-label-api/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdmins only answers Me; any other call panics on the nil interface.
type stubAdmins struct{ admin.Service }

func (stubAdmins) Me(_ context.Context, username string) (*domain.Admin, error) {
	return &domain.Admin{Username: username, Role: domain.RoleAdmin}, nil
}

type testServer struct {
	handler  http.Handler
	provider *jwtinfra.Provider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		SessionTokenSecret: strings.Repeat("r", 32),
		SessionTokenTTL:    time.Hour,
		SessionCookieName:  "label_session",
		AllowedOrigins:     []string{"*"},
	}
	m := metrics.New()
	p, err := jwtinfra.NewProvider(cfg, jwtinfra.WithRecorder(m))
	require.NoError(t, err)
	cookies, err := jwtinfra.NewCookieCodec(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewRouter(ctx, cfg, &Deps{
		Admins:  stubAdmins{},
		Tokens:  p,
		Cookies: cookies,
		Metrics: m.Handler(),
		Logger:  zerolog.Nop(),
	})
	return &testServer{handler: h, provider: p}
}

func (s *testServer) do(t *testing.T, method, path, subject string, role domain.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if subject != "" {
		token, _, err := s.provider.Issue(subject, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/v1/admin/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_UserTokenCannotReachAdmin(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/v1/admin/tags", "uid-1", domain.RoleUser)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_AdminCannotReachSuperadmin(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/v1/admin/superadmin/admins", "ops", domain.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_AdminTokenCannotReachUserProfile(t *testing.T) {
	s := newTestServer(t)
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleSuperadmin} {
		rr := s.do(t, http.MethodGet, "/v1/users/me", "ops", role)
		assert.Equal(t, http.StatusForbidden, rr.Code, "role %s", role)
	}
}

func TestRouter_AdminMe(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/v1/admin/me", "ops", domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"ops"`)
}

func TestRouter_MetricsExposeTokenCounters(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/v1/admin/me", "ops", domain.RoleAdmin)

	rr := s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `label_session_tokens_issued_total{role="ADMIN"} 1`)
}
