package model

import "time"

// Pipeline stages in their fixed reporting order.
const (
	StageProspecting   = "prospecting"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed-won"
	StageClosedLost    = "closed-lost"
)

// StageOrder lists the pipeline stages in reporting order.
var StageOrder = []string{
	StageProspecting,
	StageQualification,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// ValidStage reports whether stage is one of the pipeline stages
func ValidStage(stage string) bool {
	for _, s := range StageOrder {
		if s == stage {
			return true
		}
	}
	return false
}

// Opportunity represents a sales opportunity in the pipeline
type Opportunity struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	CustomerID        uint      `json:"customer_id" gorm:"index;not null"`
	Title             string    `json:"title" gorm:"type:varchar(200);not null"`
	Description       string    `json:"description" gorm:"type:text"`
	Value             float64   `json:"value" gorm:"default:0"`
	Stage             string    `json:"stage" gorm:"type:varchar(20);default:'prospecting'"`
	Probability       int       `json:"probability" gorm:"default:0"`
	ExpectedCloseDate *string   `json:"expected_close_date" gorm:"type:date"`
	Status            string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	Notes             string    `json:"notes" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
}
