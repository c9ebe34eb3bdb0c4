package model

import "time"

// AdminUsername is the bootstrap account that can never be deleted.
const AdminUsername = "admin"

// User represents a CRM login account
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	FullName     string    `json:"full_name" gorm:"type:varchar(100);not null"`
	Role         string    `json:"role" gorm:"type:varchar(20);default:'staff'"`
	CreatedAt    time.Time `json:"created_at"`
}
