package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-label-api/internal/application/signin"
	"github.com/go-label-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScan_HappyPath(t *testing.T) {
	req := domain.ScanRequest{TagID: "t1", PhoneNumber: "+15550001111"}
	svc := &mockSignInSvc{}
	svc.On("Scan", mock.Anything, req).Return(&signin.ScanResult{
		SessionID: "s1", ExpiresIn: 600, Tag: &domain.Tag{TagID: "t1", Active: true},
	}, nil)
	h := NewSignInHandler(svc, newTestCookies(t))

	rr := httptest.NewRecorder()
	h.Scan(rr, jsonReq(t, http.MethodPost, "/v1/qr-signin/scan", req))
	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp signin.ScanResult
	decodeBody(t, rr, &resp)
	assert.Equal(t, "s1", resp.SessionID)
}

func TestScan_PhoneMismatch(t *testing.T) {
	req := domain.ScanRequest{TagID: "t1", PhoneNumber: "+15550009999"}
	svc := &mockSignInSvc{}
	svc.On("Scan", mock.Anything, req).Return(nil, fmt.Errorf("phone does not match tag: %w", domain.ErrForbidden))
	h := NewSignInHandler(svc, newTestCookies(t))

	rr := httptest.NewRecorder()
	h.Scan(rr, jsonReq(t, http.MethodPost, "/v1/qr-signin/scan", req))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestVerifyScan_Expired(t *testing.T) {
	req := domain.ScanVerifyRequest{SessionID: "s1", Code: "123456"}
	svc := &mockSignInSvc{}
	svc.On("VerifyScan", mock.Anything, req).Return(nil, fmt.Errorf("verify code: %w", domain.ErrSessionExpired))
	h := NewSignInHandler(svc, newTestCookies(t))

	rr := httptest.NewRecorder()
	h.VerifyScan(rr, jsonReq(t, http.MethodPost, "/v1/qr-signin/verify", req))
	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestVerifyScan_ReturnsCustomToken(t *testing.T) {
	req := domain.ScanVerifyRequest{SessionID: "s1", Code: "123456"}
	svc := &mockSignInSvc{}
	svc.On("VerifyScan", mock.Anything, req).
		Return(&signin.ScanVerifyResult{CustomToken: "ct", UID: "uid-1", PhoneNumber: "+15550001111"}, nil)
	h := NewSignInHandler(svc, newTestCookies(t))

	rr := httptest.NewRecorder()
	h.VerifyScan(rr, jsonReq(t, http.MethodPost, "/v1/qr-signin/verify", req))
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp signin.ScanVerifyResult
	decodeBody(t, rr, &resp)
	assert.Equal(t, "ct", resp.CustomToken)
}

func TestSignInWithTag_MissingIDToken(t *testing.T) {
	h := NewSignInHandler(&mockSignInSvc{}, newTestCookies(t))
	rr := httptest.NewRecorder()
	h.SignInWithTag(rr, jsonReq(t, http.MethodPost, "/v1/qr-signin/signin", domain.TagSignInRequest{TagID: "t1"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSignInWithTag_SetsCookie(t *testing.T) {
	req := domain.TagSignInRequest{TagID: "t1"}
	svc := &mockSignInSvc{}
	svc.On("SignInWithTag", mock.Anything, "id-token", req).Return(&signin.SessionResult{
		Token:     "user-tok",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &domain.User{UserID: "uid-1", PhoneNumber: "+15550001111"},
		Tag:       &domain.Tag{TagID: "t1", Active: true},
	}, nil)
	h := NewSignInHandler(svc, newTestCookies(t))

	r := jsonReq(t, http.MethodPost, "/v1/qr-signin/signin", req)
	r.Header.Set("Authorization", "Bearer id-token")
	rr := httptest.NewRecorder()
	h.SignInWithTag(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, rr.Result().Cookies(), 1)
	var resp SessionEnvelope
	decodeBody(t, rr, &resp)
	assert.Equal(t, "user-tok", resp.Token)
	assert.Equal(t, "t1", resp.Tag.TagID)
	svc.AssertExpectations(t)
}

func TestSignInUser_PhoneMismatch(t *testing.T) {
	req := domain.UserSignInRequest{IDToken: "id-token", PhoneNumber: "+15550001111"}
	svc := &mockSignInSvc{}
	svc.On("SignInUser", mock.Anything, req).Return(nil, fmt.Errorf("phone mismatch: %w", domain.ErrUnauthorized))
	h := NewSignInHandler(svc, newTestCookies(t))

	rr := httptest.NewRecorder()
	h.SignInUser(rr, jsonReq(t, http.MethodPost, "/v1/users/signin", req))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestUserMe_ReturnsProfile(t *testing.T) {
	svc := &mockSignInSvc{}
	svc.On("Profile", mock.Anything, "uid-1").Return(&signin.Profile{
		User:   &domain.User{UserID: "uid-1"},
		Claims: map[string]interface{}{"tier": "gold"},
	}, nil)
	h := NewSignInHandler(svc, newTestCookies(t))

	rr := httptest.NewRecorder()
	h.Me(rr, withSubject(httptest.NewRequest(http.MethodGet, "/v1/users/me", nil), "uid-1", domain.RoleUser))
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp signin.Profile
	decodeBody(t, rr, &resp)
	assert.Equal(t, "gold", resp.Claims["tier"])
}
