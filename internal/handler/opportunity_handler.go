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

// OpportunityRequest defines the structure for opportunity creation requests
type OpportunityRequest struct {
	CustomerID        uint    `json:"customer_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Value             float64 `json:"value"`
	Stage             string  `json:"stage"`
	Probability       int     `json:"probability"`
	ExpectedCloseDate *string `json:"expected_close_date"`
	Notes             string  `json:"notes"`
}

// OpportunityRow is an opportunity joined with its customer's contact details
type OpportunityRow struct {
	model.Opportunity
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
}

// OpportunityHandler serves the opportunities API
type OpportunityHandler struct {
	db *gorm.DB
}

// NewOpportunityHandler creates an OpportunityHandler
func NewOpportunityHandler(db *gorm.DB) *OpportunityHandler {
	return &OpportunityHandler{db: db}
}

// List returns all opportunities with customer details, newest first
func (h *OpportunityHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("opportunity", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []OpportunityRow
	err := h.db.Table("opportunities").
		Select("opportunities.*, customers.name AS customer_name, customers.phone AS customer_phone, customers.email AS customer_email").
		Joins("LEFT JOIN customers ON opportunities.customer_id = customers.id").
		Order("opportunities.created_at desc").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to retrieve opportunities", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve opportunities"})
	}

	return c.JSON(http.StatusOK, rows)
}

// Create inserts a new opportunity for an existing customer
func (h *OpportunityHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("opportunity", "create")

	var req OpportunityRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.CustomerID == 0 || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and title are required"})
	}

	if req.Stage == "" {
		req.Stage = model.StageProspecting
	}
	if !model.ValidStage(req.Stage) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid stage"})
	}
	if req.Value < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must not be negative"})
	}
	if req.Probability < 0 || req.Probability > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "probability must be between 0 and 100"})
	}

	var count int64
	h.db.Model(&model.Customer{}).Where("id = ?", req.CustomerID).Count(&count)
	if count == 0 {
		log.Warn("Opportunity references unknown customer", zap.Uint("customer_id", req.CustomerID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Referenced customer does not exist"})
	}

	opportunity := model.Opportunity{
		CustomerID:        req.CustomerID,
		Title:             req.Title,
		Description:       req.Description,
		Value:             req.Value,
		Stage:             req.Stage,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		Status:            "active",
		Notes:             req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&opportunity).Error; err != nil {
		log.Error("Failed to create opportunity", zap.String("title", req.Title), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create opportunity"})
	}

	log.Info("Opportunity created",
		zap.Uint("id", opportunity.ID),
		zap.String("title", opportunity.Title),
		zap.String("stage", opportunity.Stage),
		zap.Float64("value", opportunity.Value))
	return c.JSON(http.StatusOK, echo.Map{
		"id":      opportunity.ID,
		"message": "Opportunity added successfully",
	})
}
