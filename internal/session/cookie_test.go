package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func recordedCookie(t *testing.T, write func(c echo.Context)) *http.Cookie {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	write(e.NewContext(req, rec))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestCookieSet(t *testing.T) {
	m := NewCookieManager(false)

	cookie := recordedCookie(t, func(c echo.Context) {
		m.Set(c, "token-value", time.Now().Add(time.Hour))
	})

	if cookie.Name != DefaultCookieName || cookie.Value != "token-value" {
		t.Errorf("unexpected cookie: %+v", cookie)
	}
	if cookie.MaxAge <= 0 {
		t.Errorf("expected a positive max-age, got %d", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be http-only")
	}
}

func TestCookieSetPastExpiryDeletes(t *testing.T) {
	m := NewCookieManager(false)

	// A max-age of 0 would leave a browser-session cookie behind
	cookie := recordedCookie(t, func(c echo.Context) {
		m.Set(c, "token-value", time.Now().Add(-time.Minute))
	})

	if cookie.MaxAge >= 0 {
		t.Errorf("expected a deleting max-age, got %d", cookie.MaxAge)
	}
}

func TestCookieClear(t *testing.T) {
	m := NewCookieManager(false)

	cookie := recordedCookie(t, func(c echo.Context) {
		m.Clear(c)
	})

	if cookie.Value != "" {
		t.Errorf("expected an empty value, got %q", cookie.Value)
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("expected a deleting max-age, got %d", cookie.MaxAge)
	}
}
