package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-label-api/internal/application/admin"
	"github.com/go-label-api/internal/application/otp"
	"github.com/go-label-api/internal/application/signin"
	"github.com/go-label-api/internal/application/verification"
	"github.com/go-label-api/internal/config"
	"github.com/go-label-api/internal/domain"
	jwtinfra "github.com/go-label-api/internal/infrastructure/jwt"
	"github.com/go-label-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Request(ctx context.Context, raw string) (*otp.Challenge, error) {
	args := m.Called(ctx, raw)
	if c, _ := args.Get(0).(*otp.Challenge); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) Send(ctx context.Context, to string, ch domain.Channel, opts ...verification.SessionOption) (*otp.Challenge, error) {
	args := m.Called(ctx, to, ch)
	if c, _ := args.Get(0).(*otp.Challenge); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) Verify(ctx context.Context, sessionID, code string) (*verification.Result, error) {
	args := m.Called(ctx, sessionID, code)
	if r, _ := args.Get(0).(*verification.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTagSvc struct{ mock.Mock }

func (m *mockTagSvc) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	args := m.Called(ctx, tagID)
	if t, _ := args.Get(0).(*domain.Tag); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTagSvc) Claim(ctx context.Context, tagID string, req domain.ClaimTagRequest) (*domain.Tag, error) {
	args := m.Called(ctx, tagID, req)
	if t, _ := args.Get(0).(*domain.Tag); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTagSvc) Update(ctx context.Context, tagID string, req domain.UpdateTagRequest) (*domain.Tag, error) {
	args := m.Called(ctx, tagID, req)
	if t, _ := args.Get(0).(*domain.Tag); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTagSvc) List(ctx context.Context, limit int, cursor string) ([]domain.Tag, string, error) {
	args := m.Called(ctx, limit, cursor)
	tags, _ := args.Get(0).([]domain.Tag)
	return tags, args.String(1), args.Error(2)
}

func (m *mockTagSvc) Generate(ctx context.Context, req domain.GenerateTagsRequest) ([]domain.GeneratedTag, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).([]domain.GeneratedTag)
	return out, args.Error(1)
}

type mockAdminSvc struct{ mock.Mock }

func (m *mockAdminSvc) Login(ctx context.Context, req domain.AdminLoginRequest) (*admin.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*admin.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminSvc) Me(ctx context.Context, username string) (*domain.Admin, error) {
	args := m.Called(ctx, username)
	return adminOrNil(args)
}

func (m *mockAdminSvc) Create(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, error) {
	args := m.Called(ctx, req)
	return adminOrNil(args)
}

func (m *mockAdminSvc) List(ctx context.Context) ([]domain.Admin, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.Admin)
	return out, args.Error(1)
}

func (m *mockAdminSvc) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	args := m.Called(ctx, adminID)
	return adminOrNil(args)
}

func (m *mockAdminSvc) Update(ctx context.Context, actor, adminID string, req domain.UpdateAdminRequest) (*domain.Admin, error) {
	args := m.Called(ctx, actor, adminID, req)
	return adminOrNil(args)
}

func (m *mockAdminSvc) Delete(ctx context.Context, actor, adminID string) error {
	return m.Called(ctx, actor, adminID).Error(0)
}

func (m *mockAdminSvc) SeedSuperadmin(ctx context.Context, username, password, email string) error {
	return m.Called(ctx, username, password, email).Error(0)
}

func adminOrNil(args mock.Arguments) (*domain.Admin, error) {
	if a, _ := args.Get(0).(*domain.Admin); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSignInSvc struct{ mock.Mock }

func (m *mockSignInSvc) Scan(ctx context.Context, req domain.ScanRequest) (*signin.ScanResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*signin.ScanResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSignInSvc) VerifyScan(ctx context.Context, req domain.ScanVerifyRequest) (*signin.ScanVerifyResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*signin.ScanVerifyResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSignInSvc) SignInWithTag(ctx context.Context, idToken string, req domain.TagSignInRequest) (*signin.SessionResult, error) {
	args := m.Called(ctx, idToken, req)
	if r, _ := args.Get(0).(*signin.SessionResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSignInSvc) SignInUser(ctx context.Context, req domain.UserSignInRequest) (*signin.SessionResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*signin.SessionResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSignInSvc) Profile(ctx context.Context, uid string) (*signin.Profile, error) {
	args := m.Called(ctx, uid)
	if p, _ := args.Get(0).(*signin.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		SessionTokenSecret: strings.Repeat("h", 32),
		SessionTokenTTL:    time.Hour,
		SessionCookieName:  "label_session",
		CookieSecure:       true,
	}
}

func newTestCookies(t *testing.T) *jwtinfra.CookieCodec {
	t.Helper()
	c, err := jwtinfra.NewCookieCodec(testConfig())
	require.NoError(t, err)
	return c
}

func jsonReq(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewReader(b))
}

// withChiID injects a chi URL parameter "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withSubject(r *http.Request, subject string, role domain.Role) *http.Request {
	claims := &jwtinfra.Claims{Role: role}
	claims.Subject = subject
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dst))
}
