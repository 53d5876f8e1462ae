package jwtinfra

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieCodec_WriteRead(t *testing.T) {
	cfg := testConfig()
	cfg.CookieBlockKey = "0123456789abcdef"
	c, err := NewCookieCodec(cfg)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, c.Write(rr, "header.payload.sig", time.Now().Add(time.Hour)))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, "label_session", ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
	assert.NotContains(t, ck.Value, "header.payload.sig")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	token, err := c.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", token)
}

func TestCookieCodec_Missing(t *testing.T) {
	c, err := NewCookieCodec(testConfig())
	require.NoError(t, err)
	_, err = c.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, http.ErrNoCookie))
}

func TestCookieCodec_Forged(t *testing.T) {
	c, err := NewCookieCodec(testConfig())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "label_session", Value: "forged-value"})
	_, err = c.Read(req)
	assert.True(t, errors.Is(err, ErrTokenMalformed))
}

func TestCookieCodec_Clear(t *testing.T) {
	c, err := NewCookieCodec(testConfig())
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	c.Clear(rr)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestNewCookieCodec_BadBlockKey(t *testing.T) {
	cfg := testConfig()
	cfg.CookieBlockKey = "short"
	_, err := NewCookieCodec(cfg)
	assert.ErrorContains(t, err, "block key")
}
