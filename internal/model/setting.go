package model

import (
	"time"

	"gorm.io/datatypes"
)

// Setting keys used by the settings endpoints.
const (
	SettingKeyCompany     = "company"
	SettingKeyPreferences = "preferences"
)

// Setting stores a JSON settings payload under a unique key
type Setting struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Key       string         `json:"key" gorm:"type:varchar(50);uniqueIndex;not null"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}
