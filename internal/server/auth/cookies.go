package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/common"
)

const (
	signedPrefix = "s:"
	logoutValue  = "logout"
)

// Cookies writes and reads the signed httpOnly token cookies.
type Cookies struct {
	secret        []byte
	secure        bool
	accessMaxAge  time.Duration
	refreshMaxAge time.Duration
	now           func() time.Time
}

func NewCookies(secret string, secure bool, accessMaxAge, refreshMaxAge time.Duration) *Cookies {
	return &Cookies{
		secret:        []byte(secret),
		secure:        secure,
		accessMaxAge:  accessMaxAge,
		refreshMaxAge: refreshMaxAge,
		now:           time.Now,
	}
}

// Attach sets both token cookies on the response.
func (c *Cookies) Attach(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, c.cookie(common.AccessTokenCookieName, c.sign(access), c.accessMaxAge))
	http.SetCookie(w, c.cookie(common.RefreshTokenCookieName, c.sign(refresh), c.refreshMaxAge))
}

// Clear overwrites both cookies with an expired placeholder.
func (c *Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		ck := c.cookie(name, logoutValue, 0)
		ck.MaxAge = -1
		ck.Expires = c.now()
		http.SetCookie(w, ck)
	}
}

// Read returns the verified cookie values. A missing, unsigned or tampered
// cookie yields an empty string.
func (c *Cookies) Read(r *http.Request) (access, refresh string) {
	return c.read(r, common.AccessTokenCookieName), c.read(r, common.RefreshTokenCookieName)
}

func (c *Cookies) read(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	raw, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ""
	}
	v, ok := c.unsign(raw)
	if !ok {
		return ""
	}
	return v
}

func (c *Cookies) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge > 0 {
		ck.MaxAge = int(maxAge.Seconds())
		ck.Expires = c.now().Add(maxAge)
	}
	return ck
}

func (c *Cookies) mac(value string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(value))
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}

// sign produces "s:<value>.<mac>", escaped for use as a cookie value.
func (c *Cookies) sign(value string) string {
	return url.QueryEscape(signedPrefix + value + "." + c.mac(value))
}

func (c *Cookies) unsign(raw string) (string, bool) {
	body, ok := strings.CutPrefix(raw, signedPrefix)
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(body, '.')
	if i < 0 {
		return "", false
	}
	value, sig := body[:i], body[i+1:]
	if !hmac.Equal([]byte(sig), []byte(c.mac(value))) {
		return "", false
	}
	return value, true
}
