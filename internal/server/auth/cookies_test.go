package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func requestWith(cookies map[string]*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func TestAttachAndRead(t *testing.T) {
	c := NewCookies("secret", true, time.Hour, 48*time.Hour)
	rec := httptest.NewRecorder()
	c.Attach(rec, "access.jwt.value", "refresh.jwt.value")

	got := responseCookies(rec)
	require.Len(t, got, 2)

	access := got[common.AccessTokenCookieName]
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 3600, access.MaxAge)
	assert.Equal(t, 48*3600, got[common.RefreshTokenCookieName].MaxAge)
	assert.NotContains(t, access.Value, "access.jwt.value.")

	a, r := c.Read(requestWith(got))
	assert.Equal(t, "access.jwt.value", a)
	assert.Equal(t, "refresh.jwt.value", r)
}

func TestAttach_NotSecureInDevelopment(t *testing.T) {
	c := NewCookies("secret", false, time.Hour, time.Hour)
	rec := httptest.NewRecorder()
	c.Attach(rec, "a", "r")
	assert.False(t, responseCookies(rec)[common.AccessTokenCookieName].Secure)
}

func TestRead_TamperedOrForeign(t *testing.T) {
	c := NewCookies("secret", false, time.Hour, time.Hour)
	rec := httptest.NewRecorder()
	c.Attach(rec, "value", "value")
	got := responseCookies(rec)

	tampered := got[common.AccessTokenCookieName]
	tampered.Value = strings.Replace(tampered.Value, "value", "evil!", 1)

	a, r := c.Read(requestWith(got))
	assert.Empty(t, a)
	assert.Equal(t, "value", r)

	other := NewCookies("other-secret", false, time.Hour, time.Hour)
	a, r = other.Read(requestWith(got))
	assert.Empty(t, a)
	assert.Empty(t, r)
}

func TestRead_Missing(t *testing.T) {
	c := NewCookies("secret", false, time.Hour, time.Hour)
	a, r := c.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, a)
	assert.Empty(t, r)
}

func TestClear(t *testing.T) {
	c := NewCookies("secret", false, time.Hour, time.Hour)
	rec := httptest.NewRecorder()
	c.Clear(rec)

	got := responseCookies(rec)
	require.Len(t, got, 2)
	for _, ck := range got {
		assert.Equal(t, "logout", ck.Value)
		assert.True(t, ck.MaxAge < 0)
		assert.True(t, ck.HttpOnly)
	}

	a, r := c.Read(requestWith(got))
	assert.Empty(t, a)
	assert.Empty(t, r)
}
