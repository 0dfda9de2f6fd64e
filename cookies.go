package lmsAuth

import (
	"net/http"
	"time"
)

// TokenCookies returns the access and refresh cookies for pair. Both are
// HttpOnly; production mode adds Secure and SameSite=None, otherwise Lax.
func (e *Engine) TokenCookies(pair TokenPair) []*http.Cookie {
	sec := e.config.Security
	return []*http.Cookie{
		e.tokenCookie(sec.AccessCookieName, pair.AccessToken, sec.AccessCookieMaxAge),
		e.tokenCookie(sec.RefreshCookieName, pair.RefreshToken, sec.RefreshCookieMaxAge),
	}
}

// ClearCookies returns empty, already expired token cookies.
func (e *Engine) ClearCookies() []*http.Cookie {
	sec := e.config.Security
	out := make([]*http.Cookie, 0, 2)
	for _, name := range []string{sec.AccessCookieName, sec.RefreshCookieName} {
		c := e.tokenCookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		out = append(out, c)
	}
	return out
}

// AccessCookieName is the cookie read by the authentication gate.
func (e *Engine) AccessCookieName() string {
	return e.config.Security.AccessCookieName
}

// RefreshCookieName is the cookie read by the refresh endpoint.
func (e *Engine) RefreshCookieName() string {
	return e.config.Security.RefreshCookieName
}

func (e *Engine) tokenCookie(name, value string, maxAge time.Duration) *http.Cookie {
	sec := e.config.Security
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     sec.CookiePath,
		Domain:   sec.CookieDomain,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge / time.Second)
		c.Expires = time.Now().Add(maxAge)
	}
	if sec.ProductionMode {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
