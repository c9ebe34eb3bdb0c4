package handler

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/pkg/config"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SystemHandler serves the maintenance endpoints on the settings page
type SystemHandler struct {
	db        *gorm.DB
	dbConfig  *config.DBConfig
	startTime time.Time
}

// NewSystemHandler creates a SystemHandler
func NewSystemHandler(db *gorm.DB, dbConfig *config.DBConfig) *SystemHandler {
	return &SystemHandler{
		db:        db,
		dbConfig:  dbConfig,
		startTime: time.Now(),
	}
}

// DBSize reports the size of the backing database
func (h *SystemHandler) DBSize(c echo.Context) error {
	log := logger.FromContext(c)

	var sizeBytes int64
	switch h.dbConfig.Driver {
	case "sqlite":
		info, err := os.Stat(h.dbConfig.Path)
		if err != nil {
			log.Warn("Failed to stat sqlite database file", zap.Error(err))
			return c.JSON(http.StatusOK, echo.Map{"size": "unknown"})
		}
		sizeBytes = info.Size()
	case "postgres":
		err := h.db.Raw("SELECT pg_database_size(current_database())").Scan(&sizeBytes).Error
		if err != nil {
			log.Error("Failed to query database size", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to determine database size"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"size": fmt.Sprintf("%.1f MB", float64(sizeBytes)/(1024*1024)),
	})
}

// Backup writes a point-in-time copy of a sqlite database next to the
// original. Postgres deployments are expected to use their own tooling.
func (h *SystemHandler) Backup(c echo.Context) error {
	log := logger.FromContext(c)

	if h.dbConfig.Driver != "sqlite" {
		return c.JSON(http.StatusOK, echo.Map{"message": "Backup is managed by the database server"})
	}

	target := fmt.Sprintf("%s.backup-%s", h.dbConfig.Path, time.Now().Format("20060102150405"))
	if err := h.db.Exec("VACUUM INTO ?", target).Error; err != nil {
		log.Error("Backup failed", zap.String("target", target), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Backup failed"})
	}

	log.Info("Backup completed", zap.String("target", target))
	return c.JSON(http.StatusOK, echo.Map{"message": "Backup completed successfully"})
}

// ClearCache exists for the settings page. The service keeps no
// per-request cache, so there is nothing to clear.
func (h *SystemHandler) ClearCache(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Cache cleared successfully"})
}

// Diagnostics reports process and database health
func (h *SystemHandler) Diagnostics(c echo.Context) error {
	log := logger.FromContext(c)

	dbStatus := "Connected"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "Unavailable"
	} else if err := sqlDB.Ping(); err != nil {
		log.Warn("Database ping failed", zap.Error(err))
		dbStatus = "Unavailable"
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := "Healthy"
	if dbStatus != "Connected" {
		status = "Degraded"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":    status,
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"memory":    fmt.Sprintf("%.1f MB heap in use", float64(mem.HeapInuse)/(1024*1024)),
		"db_status": dbStatus,
	})
}
