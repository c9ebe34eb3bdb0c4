package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "crm_session"

// CookieManager reads and writes the session cookie.
type CookieManager struct {
	cookieName string
	secure     bool
}

// NewCookieManager creates a cookie manager
func NewCookieManager(secure bool) *CookieManager {
	return &CookieManager{
		cookieName: DefaultCookieName,
		secure:     secure,
	}
}

// CookieName returns the configured cookie name
func (m *CookieManager) CookieName() string {
	return m.cookieName
}

// ReadToken returns the raw session token from the request cookie
func (m *CookieManager) ReadToken(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}
	return cookie.Value, true
}

// Set writes the session cookie with a max-age derived from the expiry
func (m *CookieManager) Set(c echo.Context, value string, expiresAt time.Time) {
	// A max-age of 0 would write a browser-session cookie; a past expiry
	// must delete the cookie instead
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie
func (m *CookieManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
