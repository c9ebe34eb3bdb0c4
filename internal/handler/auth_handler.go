package handler

import (
	"net/http"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/internal/session"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/pkg/sessiontoken"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves login, logout and password change
type AuthHandler struct {
	db         *gorm.DB
	sessions   *session.Store
	cookies    *session.CookieManager
	sessionTTL time.Duration
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(db *gorm.DB, sessions *session.Store, cookies *session.CookieManager, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		db:         db,
		sessions:   sessions,
		cookies:    cookies,
		sessionTTL: sessionTTL,
	}
}

// Login validates credentials and establishes a session
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		log.Warn("Login for unknown user", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	// bcrypt compare is the constant-time primitive here
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	sess := h.sessions.Create(user.ID, user.Username, h.sessionTTL)
	token, err := sessiontoken.Generate(sess.ID, sess.UserID, sess.Username, sess.ExpiresAt)
	if err != nil {
		h.sessions.Delete(sess.ID)
		log.Error("Failed to generate session token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	h.cookies.Set(c, token, sess.ExpiresAt)

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"redirect": "/dashboard",
	})
}

// Logout destroys the session unconditionally and sends the browser to /login
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromContext(c)

	if token, ok := h.cookies.ReadToken(c); ok {
		if claims, err := sessiontoken.Validate(token); err == nil {
			h.sessions.Delete(claims.SessionID)
			log.Info("User logged out", zap.String("username", claims.Username))
		}
	}

	h.cookies.Clear(c)
	return c.Redirect(http.StatusFound, "/login")
}

// LoginPage serves the login page, or goes straight to the dashboard
// when the browser already holds a valid session
func (h *AuthHandler) LoginPage(staticDir string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := h.cookies.ReadToken(c); ok {
			if claims, err := sessiontoken.Validate(token); err == nil {
				if _, exists := h.sessions.Get(claims.SessionID); exists {
					return c.Redirect(http.StatusFound, "/dashboard")
				}
			}
		}
		return c.File(pagePath(staticDir, "login"))
	}
}

// ChangePassword re-validates the current password before storing a new hash
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse change-password request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password is required"})
	}

	username, ok := c.Get("username").(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var user model.User
	if err := h.db.Where("username = ?", username).First(&user).Error; err != nil {
		log.Error("Session user missing from store", zap.String("username", username), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		log.Warn("Password change with wrong current password", zap.String("username", username))
		prometheus.RecordAuthError("current_password_incorrect")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Current password is incorrect"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash new password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to change password"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		log.Error("Failed to store new password hash", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to change password"})
	}

	log.Info("Password changed", zap.String("username", username))
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
