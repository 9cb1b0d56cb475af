package models

import "gorm.io/gorm"

// Location is a named storage place (fridge, freezer, shelf...) scoped to a
// single household. Names are unique within the household, case-sensitively.
type Location struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	HouseholdID string `json:"household_id" gorm:"type:varchar(36);uniqueIndex:idx_household_location_name" validate:"required"`
	Name        string `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_household_location_name" validate:"required,max=100"`
	Description string `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	gorm.Model
}
