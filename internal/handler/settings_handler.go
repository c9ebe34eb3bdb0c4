package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsHandler persists the company and preferences payloads
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// SaveCompany stores the company settings payload
func (h *SettingsHandler) SaveCompany(c echo.Context) error {
	return h.save(c, model.SettingKeyCompany, "Company settings saved successfully")
}

// SavePreferences stores the preferences payload
func (h *SettingsHandler) SavePreferences(c echo.Context) error {
	return h.save(c, model.SettingKeyPreferences, "Preferences saved successfully")
}

// GetCompany returns the stored company settings
func (h *SettingsHandler) GetCompany(c echo.Context) error {
	return h.get(c, model.SettingKeyCompany)
}

// GetPreferences returns the stored preferences
func (h *SettingsHandler) GetPreferences(c echo.Context) error {
	return h.get(c, model.SettingKeyPreferences)
}

func (h *SettingsHandler) save(c echo.Context, key, message string) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("setting", "save")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if len(body) == 0 || !json.Valid(body) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "request body must be a JSON object"})
	}

	setting := model.Setting{
		Key:   key,
		Value: datatypes.JSON(body),
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		log.Error("Failed to save settings", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save settings"})
	}

	log.Info("Settings saved", zap.String("key", key))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

func (h *SettingsHandler) get(c echo.Context, key string) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("setting", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var setting model.Setting
	if err := h.db.Where("key = ?", key).First(&setting).Error; err != nil {
		log.Warn("Settings not found", zap.String("key", key))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Settings not found"})
	}

	return c.JSONBlob(http.StatusOK, setting.Value)
}
