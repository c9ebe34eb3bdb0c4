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
	"gorm.io/gorm"
)

// CustomerRequest defines the structure for customer creation/update requests.
// Updates are full-record replaces: an omitted field overwrites the stored value.
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CustomerHandler serves the customers API
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler creates a CustomerHandler
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// List returns all customers, newest first
func (h *CustomerHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var customers []model.Customer
	if err := h.db.Order("created_at desc").Find(&customers).Error; err != nil {
		log.Error("Failed to retrieve customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, customers)
}

// Get returns a single customer by ID
func (h *CustomerHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid customer ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var customer model.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		log.Warn("Customer not found", zap.Uint64("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	return c.JSON(http.StatusOK, customer)
}

// Create inserts a new customer
func (h *CustomerHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "create")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone are required"})
	}

	customer := model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	}

	// The unique index on phone is the arbiter against concurrent inserts,
	// not an application-level check-then-act.
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&customer).Error; err != nil {
		if database.IsDuplicateKeyErr(err) {
			log.Warn("Customer with this phone already exists", zap.String("phone", req.Phone))
			return c.JSON(http.StatusConflict, echo.Map{"error": "Customer with this phone already exists"})
		}
		log.Error("Failed to create customer", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create customer"})
	}

	log.Info("Customer created",
		zap.Uint("id", customer.ID),
		zap.String("name", customer.Name))
	return c.JSON(http.StatusOK, echo.Map{
		"id":      customer.ID,
		"message": "Customer added successfully",
	})
}

// Update replaces all customer fields and refreshes updated_at
func (h *CustomerHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid customer ID"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var customer model.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		log.Warn("Customer not found for update", zap.Uint64("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.Notes = req.Notes

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&customer).Error; err != nil {
		if database.IsDuplicateKeyErr(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Customer with this phone already exists"})
		}
		log.Error("Failed to update customer", zap.Uint64("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update customer"})
	}

	log.Info("Customer updated", zap.Uint64("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer updated successfully"})
}

// Delete removes a customer. Dependent contacts, opportunities and
// activities are left in place; orphaning is the documented behavior.
func (h *CustomerHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid customer ID"})
	}

	var customer model.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		log.Warn("Customer not found for delete", zap.Uint64("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&customer).Error; err != nil {
		log.Error("Failed to delete customer", zap.Uint64("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete customer"})
	}

	log.Info("Customer deleted", zap.Uint64("customer_id", id), zap.String("name", customer.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}
