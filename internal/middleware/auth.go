package middleware

import (
	"net/http"

	"github.com/annaimjamhari/aircond-crm-app/internal/session"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/pkg/sessiontoken"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// resolveSession validates the signed cookie token and requires the
// referenced session to still exist server-side
func resolveSession(c echo.Context, sessions *session.Store, cookies *session.CookieManager) (session.Session, string, bool) {
	token, ok := cookies.ReadToken(c)
	if !ok {
		return session.Session{}, "missing_session", false
	}

	claims, err := sessiontoken.Validate(token)
	if err != nil {
		// An expired token still names its server-side session. Drop the
		// record here, otherwise the store and the active-sessions gauge
		// only shrink on explicit logout.
		if stale, staleErr := sessiontoken.ClaimsIgnoringExpiry(token); staleErr == nil {
			sessions.Delete(stale.SessionID)
		}
		return session.Session{}, "invalid_token", false
	}

	sess, ok := sessions.Get(claims.SessionID)
	if !ok {
		// Logged out or expired. The token signature alone is not enough.
		return session.Session{}, "expired_session", false
	}

	return sess, "", true
}

// PageAuth gates page routes. Unauthenticated browsers are sent to the login page.
func PageAuth(sessions *session.Store, cookies *session.CookieManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, reason, ok := resolveSession(c, sessions, cookies)
			if !ok {
				prometheus.RecordAuthError(reason)
				return c.Redirect(http.StatusFound, "/login")
			}

			c.Set("user_id", sess.UserID)
			c.Set("username", sess.Username)
			return next(c)
		}
	}
}

// APIAuth gates API routes. Unauthenticated callers get a 401, never a redirect.
func APIAuth(sessions *session.Store, cookies *session.CookieManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			sess, reason, ok := resolveSession(c, sessions, cookies)
			if !ok {
				log.Warn("Unauthenticated API request",
					zap.String("path", c.Request().URL.Path),
					zap.String("reason", reason))
				prometheus.RecordAuthError(reason)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			c.Set("user_id", sess.UserID)
			c.Set("username", sess.Username)
			return next(c)
		}
	}
}
