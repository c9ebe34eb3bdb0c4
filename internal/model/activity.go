package model

import "time"

// Activity types.
const (
	ActivityTypeCall    = "call"
	ActivityTypeMeeting = "meeting"
	ActivityTypeEmail   = "email"
	ActivityTypeTask    = "task"
)

// Activity statuses.
const (
	ActivityStatusPending    = "pending"
	ActivityStatusInProgress = "in-progress"
	ActivityStatusCompleted  = "completed"
)

// Activity priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidActivityType reports whether t is a known activity type
func ValidActivityType(t string) bool {
	switch t {
	case ActivityTypeCall, ActivityTypeMeeting, ActivityTypeEmail, ActivityTypeTask:
		return true
	}
	return false
}

// ValidActivityStatus reports whether s is a known activity status
func ValidActivityStatus(s string) bool {
	switch s {
	case ActivityStatusPending, ActivityStatusInProgress, ActivityStatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Activity represents a call, meeting, email or task, optionally linked
// to a customer, an opportunity and an assigned user
type Activity struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CustomerID    *uint     `json:"customer_id" gorm:"index"`
	OpportunityID *uint     `json:"opportunity_id" gorm:"index"`
	Type          string    `json:"type" gorm:"type:varchar(20);not null"`
	Subject       string    `json:"subject" gorm:"type:varchar(200);not null"`
	Description   string    `json:"description" gorm:"type:text"`
	DueDate       *string   `json:"due_date" gorm:"type:date"`
	Status        string    `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Priority      string    `json:"priority" gorm:"type:varchar(10);default:'medium'"`
	AssignedTo    *uint     `json:"assigned_to" gorm:"index"`
	Notes         string    `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
}
