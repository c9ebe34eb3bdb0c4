package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActivityRequest defines the structure for activity creation requests
type ActivityRequest struct {
	CustomerID    *uint   `json:"customer_id"`
	OpportunityID *uint   `json:"opportunity_id"`
	Type          string  `json:"type"`
	Subject       string  `json:"subject"`
	Description   string  `json:"description"`
	DueDate       *string `json:"due_date"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	AssignedTo    *uint   `json:"assigned_to"`
	Notes         string  `json:"notes"`
}

// ActivityUpdateRequest covers the fields an update replaces. Links to
// customer and opportunity are fixed at creation time.
type ActivityUpdateRequest struct {
	Type        string  `json:"type"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Notes       string  `json:"notes"`
}

// ActivityRow is an activity joined with customer and opportunity labels
type ActivityRow struct {
	model.Activity
	CustomerName     string `json:"customer_name"`
	OpportunityTitle string `json:"opportunity_title"`
}

// ActivityHandler serves the activities API
type ActivityHandler struct {
	db *gorm.DB
}

// NewActivityHandler creates an ActivityHandler
func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{db: db}
}

func (h *ActivityHandler) joined() *gorm.DB {
	return h.db.Table("activities").
		Select("activities.*, customers.name AS customer_name, opportunities.title AS opportunity_title").
		Joins("LEFT JOIN customers ON activities.customer_id = customers.id").
		Joins("LEFT JOIN opportunities ON activities.opportunity_id = opportunities.id")
}

// List returns all activities ordered by due date. Activities without a
// due date sort last; within a date, higher-sorting priorities come first.
func (h *ActivityHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []ActivityRow
	err := h.joined().
		Order("activities.due_date IS NULL, activities.due_date asc, activities.priority desc").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to retrieve activities", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve activities"})
	}

	return c.JSON(http.StatusOK, rows)
}

// Get returns a single activity with customer and opportunity labels
func (h *ActivityHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid activity ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []ActivityRow
	if err := h.joined().Where("activities.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		log.Error("Failed to retrieve activity", zap.Uint64("activity_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve activity"})
	}
	if len(rows) == 0 {
		log.Warn("Activity not found", zap.Uint64("activity_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Activity not found"})
	}

	return c.JSON(http.StatusOK, rows[0])
}

// Create inserts a new activity
func (h *ActivityHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "create")

	var req ActivityRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Type == "" || req.Subject == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type and subject are required"})
	}
	if !model.ValidActivityType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid activity type"})
	}
	if req.Status == "" {
		req.Status = model.ActivityStatusPending
	}
	if !model.ValidActivityStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid activity status"})
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(req.Priority) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
	}

	if req.CustomerID != nil {
		var count int64
		h.db.Model(&model.Customer{}).Where("id = ?", *req.CustomerID).Count(&count)
		if count == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Referenced customer does not exist"})
		}
	}
	if req.OpportunityID != nil {
		var count int64
		h.db.Model(&model.Opportunity{}).Where("id = ?", *req.OpportunityID).Count(&count)
		if count == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Referenced opportunity does not exist"})
		}
	}
	if req.AssignedTo != nil {
		var count int64
		h.db.Model(&model.User{}).Where("id = ?", *req.AssignedTo).Count(&count)
		if count == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Referenced user does not exist"})
		}
	}

	activity := model.Activity{
		CustomerID:    req.CustomerID,
		OpportunityID: req.OpportunityID,
		Type:          req.Type,
		Subject:       req.Subject,
		Description:   req.Description,
		DueDate:       req.DueDate,
		Status:        req.Status,
		Priority:      req.Priority,
		AssignedTo:    req.AssignedTo,
		Notes:         req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&activity).Error; err != nil {
		log.Error("Failed to create activity", zap.String("subject", req.Subject), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create activity"})
	}

	log.Info("Activity created",
		zap.Uint("id", activity.ID),
		zap.String("type", activity.Type),
		zap.String("subject", activity.Subject))
	return c.JSON(http.StatusOK, echo.Map{
		"id":      activity.ID,
		"message": "Activity added successfully",
	})
}

// Update replaces the activity's editable fields
func (h *ActivityHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid activity ID"})
	}

	var req ActivityUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("activity_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Type != "" && !model.ValidActivityType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid activity type"})
	}
	if req.Status != "" && !model.ValidActivityStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid activity status"})
	}
	if req.Priority != "" && !model.ValidPriority(req.Priority) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
	}

	var activity model.Activity
	if err := h.db.First(&activity, id).Error; err != nil {
		log.Warn("Activity not found for update", zap.Uint64("activity_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Activity not found"})
	}

	activity.Type = req.Type
	activity.Subject = req.Subject
	activity.Description = req.Description
	activity.DueDate = req.DueDate
	activity.Status = req.Status
	activity.Priority = req.Priority
	activity.Notes = req.Notes

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&activity).Error; err != nil {
		log.Error("Failed to update activity", zap.Uint64("activity_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update activity"})
	}

	log.Info("Activity updated", zap.Uint64("activity_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Activity updated successfully"})
}

// Delete removes an activity
func (h *ActivityHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid activity ID"})
	}

	var activity model.Activity
	if err := h.db.First(&activity, id).Error; err != nil {
		log.Warn("Activity not found for delete", zap.Uint64("activity_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Activity not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&activity).Error; err != nil {
		log.Error("Failed to delete activity", zap.Uint64("activity_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete activity"})
	}

	log.Info("Activity deleted", zap.Uint64("activity_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Activity deleted successfully"})
}
