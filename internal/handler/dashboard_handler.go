package handler

import (
	"net/http"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StageCount is one row of the opportunities-by-stage breakdown
type StageCount struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// DashboardHandler serves the dashboard statistics endpoint
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler creates a DashboardHandler
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats computes the dashboard counters. The queries run independently
// and are not wrapped in a transaction; a concurrent writer can make the
// totals drift within a single response, which is acceptable here.
func (h *DashboardHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReport("dashboard_stats")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var totalCustomers int64
	if err := h.db.Model(&model.Customer{}).Count(&totalCustomers).Error; err != nil {
		return h.fail(c, log, err)
	}

	var totalOpportunities int64
	if err := h.db.Model(&model.Opportunity{}).Count(&totalOpportunities).Error; err != nil {
		return h.fail(c, log, err)
	}

	var totalActivities int64
	if err := h.db.Model(&model.Activity{}).Count(&totalActivities).Error; err != nil {
		return h.fail(c, log, err)
	}

	var opportunitiesByStage []StageCount
	err := h.db.Model(&model.Opportunity{}).
		Select("stage, COUNT(*) AS count").
		Group("stage").
		Scan(&opportunitiesByStage).Error
	if err != nil {
		return h.fail(c, log, err)
	}

	var recentActivities []model.Activity
	if err := h.db.Order("created_at desc").Limit(5).Find(&recentActivities).Error; err != nil {
		return h.fail(c, log, err)
	}

	var topOpportunities []model.Opportunity
	if err := h.db.Order("value desc").Limit(5).Find(&topOpportunities).Error; err != nil {
		return h.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalCustomers":       totalCustomers,
		"totalOpportunities":   totalOpportunities,
		"totalActivities":      totalActivities,
		"opportunitiesByStage": opportunitiesByStage,
		"recentActivities":     recentActivities,
		"topOpportunities":     topOpportunities,
	})
}

func (h *DashboardHandler) fail(c echo.Context, log *zap.Logger, err error) error {
	log.Error("Failed to compute dashboard stats", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute dashboard stats"})
}
