package models

import "gorm.io/gorm"

// ProductDataSource records where a product's catalog data came from.
type ProductDataSource string

const (
	DataSourceManual        ProductDataSource = "MANUAL"
	DataSourceOpenFoodFacts ProductDataSource = "OPEN_FOOD_FACTS"
	DataSourceHybrid        ProductDataSource = "HYBRID"
)

// MaxEnrichmentAttempts caps how often a failed UPC lookup is retried before
// the product is left as manual data permanently.
const MaxEnrichmentAttempts = 5

// Product is a catalog entry identified by its UPC.
type Product struct {
	ID                    string            `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UPC                   string            `json:"upc" gorm:"uniqueIndex;type:varchar(32)" validate:"required,min=6,max=32"`
	Name                  string            `json:"name" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Brand                 string            `json:"brand" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Category              string            `json:"category" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	DefaultExpirationDays int               `json:"default_expiration_days" validate:"gte=0"`
	DataSource            ProductDataSource `json:"data_source" gorm:"type:varchar(32);default:'MANUAL'"`
	RequiresAPIRetry      bool              `json:"requires_api_retry"`
	RetryAttempts         int               `json:"retry_attempts"`
	gorm.Model
}
