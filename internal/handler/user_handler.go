package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/pkg/database"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRequest defines the structure for user creation requests
type UserRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserHandler serves the users API
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a UserHandler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns all users, newest first. Password hashes never leave the store.
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	err := h.db.Select("id", "username", "full_name", "role", "created_at").
		Order("created_at desc").
		Find(&users).Error
	if err != nil {
		log.Error("Failed to retrieve users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, users)
}

// Create inserts a new user with a bcrypt password hash
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "create")

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	if req.Role == "" {
		req.Role = "staff"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create user"})
	}

	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&user).Error; err != nil {
		if database.IsDuplicateKeyErr(err) {
			log.Warn("Username already taken", zap.String("username", req.Username))
			return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists"})
		}
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create user"})
	}

	log.Info("User created", zap.Uint("id", user.ID), zap.String("username", user.Username))
	return c.JSON(http.StatusOK, echo.Map{
		"id":      user.ID,
		"message": "User added successfully",
	})
}

// Delete removes a user. Deleting the admin account is a silent no-op:
// the call succeeds and the row stays.
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		log.Warn("User not found for delete", zap.Uint64("user_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	if user.Username == model.AdminUsername {
		log.Warn("Refusing to delete admin account", zap.Uint64("user_id", id))
		return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&user).Error; err != nil {
		log.Error("Failed to delete user", zap.Uint64("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete user"})
	}

	log.Info("User deleted", zap.Uint64("user_id", id), zap.String("username", user.Username))
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
