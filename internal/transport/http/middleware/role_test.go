package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-label-api/internal/domain"
	jwtinfra "github.com/go-label-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
)

func withRole(role domain.Role) *http.Request {
	ctx := WithClaims(context.Background(), &jwtinfra.Claims{Role: role})
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
}

func TestRequireRole_NoClaimsInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rr, withRole(domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireRole_CorrectRole(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rr, withRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_HigherRankAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rr, withRole(domain.RoleSuperadmin))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_AdminCannotReachSuperadmin(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleSuperadmin)(http.HandlerFunc(okHandler)).ServeHTTP(rr, withRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireExactRole(t *testing.T) {
	cases := map[domain.Role]int{
		domain.RoleUser:       http.StatusOK,
		domain.RoleAdmin:      http.StatusForbidden,
		domain.RoleSuperadmin: http.StatusForbidden,
	}
	for role, want := range cases {
		rr := httptest.NewRecorder()
		RequireExactRole(domain.RoleUser)(http.HandlerFunc(okHandler)).ServeHTTP(rr, withRole(role))
		assert.Equal(t, want, rr.Code, "role %s", role)
	}
}

func TestRequireExactRole_NoClaimsInContext(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireExactRole(domain.RoleUser)(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
