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

// ContactRequest defines the structure for contact creation requests
type ContactRequest struct {
	CustomerID  uint   `json:"customer_id"`
	ContactName string `json:"contact_name"`
	Position    string `json:"position"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Notes       string `json:"notes"`
}

// ContactRow is a contact joined with its customer's name
type ContactRow struct {
	model.Contact
	CustomerName string `json:"customer_name"`
}

// ContactHandler serves the contacts API
type ContactHandler struct {
	db *gorm.DB
}

// NewContactHandler creates a ContactHandler
func NewContactHandler(db *gorm.DB) *ContactHandler {
	return &ContactHandler{db: db}
}

// List returns all contacts with their customer names, newest first
func (h *ContactHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contact", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []ContactRow
	err := h.db.Table("contacts").
		Select("contacts.*, customers.name AS customer_name").
		Joins("LEFT JOIN customers ON contacts.customer_id = customers.id").
		Order("contacts.created_at desc").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to retrieve contacts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve contacts"})
	}

	return c.JSON(http.StatusOK, rows)
}

// Create inserts a new contact for an existing customer
func (h *ContactHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contact", "create")

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.CustomerID == 0 || req.ContactName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and contact_name are required"})
	}

	var count int64
	h.db.Model(&model.Customer{}).Where("id = ?", req.CustomerID).Count(&count)
	if count == 0 {
		log.Warn("Contact references unknown customer", zap.Uint("customer_id", req.CustomerID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Referenced customer does not exist"})
	}

	contact := model.Contact{
		CustomerID:  req.CustomerID,
		ContactName: req.ContactName,
		Position:    req.Position,
		Phone:       req.Phone,
		Email:       req.Email,
		Notes:       req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&contact).Error; err != nil {
		log.Error("Failed to create contact", zap.String("contact_name", req.ContactName), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create contact"})
	}

	log.Info("Contact created",
		zap.Uint("id", contact.ID),
		zap.Uint("customer_id", contact.CustomerID),
		zap.String("contact_name", contact.ContactName))
	return c.JSON(http.StatusOK, echo.Map{
		"id":      contact.ID,
		"message": "Contact added successfully",
	})
}
