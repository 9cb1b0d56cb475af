package models

import (
	"time"

	"gorm.io/gorm"
)

// PantryItem is a quantity of a product stored in a location. Its identity for
// consolidation purposes is the triple (LocationID, ProductID, ExpirationDate);
// a nil expiration date forms its own identity bucket and never matches a dated
// row. The composite unique index turns a concurrent double-insert for the same
// triple into a constraint conflict instead of a silent duplicate row.
type PantryItem struct {
	ID             string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	LocationID     string     `json:"location_id" gorm:"type:varchar(36);uniqueIndex:idx_item_identity" validate:"required"`
	ProductID      string     `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_item_identity" validate:"required"`
	Quantity       float64    `json:"quantity" validate:"gte=0"`
	UnitOfMeasure  string     `json:"unit_of_measure" gorm:"type:varchar(32)" validate:"omitempty,max=32"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty" gorm:"uniqueIndex:idx_item_identity"`
	Notes          string     `json:"notes" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	gorm.Model
}
