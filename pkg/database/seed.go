package database

import (
	"errors"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminPassword = "admin123"
	defaultAdminFullName = "System Administrator"
)

// Seed inserts the bootstrap admin user and one sample record per entity.
// Every insert is guarded by a lookup, so running it on every startup is safe.
func Seed(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedAdminUser(tx); err != nil {
			return err
		}

		customer, err := seedSampleCustomer(tx)
		if err != nil {
			return err
		}

		if err := seedSampleContact(tx, customer.ID); err != nil {
			return err
		}

		opportunity, err := seedSampleOpportunity(tx, customer.ID)
		if err != nil {
			return err
		}

		return seedSampleActivity(tx, customer.ID, opportunity.ID)
	})
}

func seedAdminUser(tx *gorm.DB) error {
	var user model.User
	err := tx.Where("username = ?", model.AdminUsername).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return tx.Create(&model.User{
		Username:     model.AdminUsername,
		PasswordHash: string(hash),
		FullName:     defaultAdminFullName,
		Role:         "admin",
	}).Error
}

func seedSampleCustomer(tx *gorm.DB) (*model.Customer, error) {
	var customer model.Customer
	err := tx.Where("phone = ?", "012-3456789").First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = model.Customer{
		Name:    "Tech Solutions Inc.",
		Phone:   "012-3456789",
		Email:   "info@techsolutions.com",
		Address: "Kuala Lumpur",
		Notes:   "Potential enterprise client",
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func seedSampleContact(tx *gorm.DB, customerID uint) error {
	var contact model.Contact
	err := tx.Where("customer_id = ? AND contact_name = ?", customerID, "Ahmad Zaki").First(&contact).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&model.Contact{
		CustomerID:  customerID,
		ContactName: "Ahmad Zaki",
		Position:    "CEO",
		Phone:       "012-9876543",
		Email:       "ahmad@techsolutions.com",
		Notes:       "Decision maker",
	}).Error
}

func seedSampleOpportunity(tx *gorm.DB, customerID uint) (*model.Opportunity, error) {
	var opportunity model.Opportunity
	err := tx.Where("customer_id = ? AND title = ?", customerID, "ERP System Implementation").First(&opportunity).Error
	if err == nil {
		return &opportunity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	closeDate := "2026-03-31"
	opportunity = model.Opportunity{
		CustomerID:        customerID,
		Title:             "ERP System Implementation",
		Description:       "Enterprise resource planning system for manufacturing division",
		Value:             250000.00,
		Stage:             model.StageProposal,
		Probability:       60,
		ExpectedCloseDate: &closeDate,
		Status:            "active",
		Notes:             "High value deal",
	}
	if err := tx.Create(&opportunity).Error; err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func seedSampleActivity(tx *gorm.DB, customerID, opportunityID uint) error {
	var activity model.Activity
	err := tx.Where("subject = ?", "Proposal Presentation").First(&activity).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	dueDate := "2026-02-20"
	return tx.Create(&model.Activity{
		CustomerID:    &customerID,
		OpportunityID: &opportunityID,
		Type:          model.ActivityTypeMeeting,
		Subject:       "Proposal Presentation",
		Description:   "Present ERP solution proposal to board",
		DueDate:       &dueDate,
		Status:        model.ActivityStatusPending,
		Priority:      model.PriorityHigh,
		Notes:         "Prepare demo materials",
	}).Error
}
