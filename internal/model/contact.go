package model

import "time"

// Contact represents a named person at a customer
type Contact struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CustomerID  uint      `json:"customer_id" gorm:"index;not null"`
	ContactName string    `json:"contact_name" gorm:"type:varchar(100);not null"`
	Position    string    `json:"position" gorm:"type:varchar(100)"`
	Phone       string    `json:"phone" gorm:"type:varchar(20)"`
	Email       string    `json:"email" gorm:"type:varchar(100)"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}
