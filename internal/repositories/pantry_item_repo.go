package repositories

import (
	"time"

	"pantri/internal/models"
)

// PantryItemRepository defines the interface for pantry item data access.
// The FindByLocationProduct* finders return (nil, nil) when no matching row
// exists; only storage failures produce an error.
type PantryItemRepository interface {
	Create(item *models.PantryItem) error
	GetByID(id string) (*models.PantryItem, error)
	Save(item *models.PantryItem) error
	Delete(id string) error
	FindByLocationProductAndExpiration(locationID, productID string, expirationDate time.Time) (*models.PantryItem, error)
	// FindByLocationProductAndNoExpiration is the IsNull variant of the identity
	// lookup: a nil expiration date only ever matches other nil-expiration rows.
	FindByLocationProductAndNoExpiration(locationID, productID string) (*models.PantryItem, error)
	FindByHouseholdID(householdID string) ([]models.PantryItem, error)
	FindByLocationID(locationID string) ([]models.PantryItem, error)
	FindLowStock(householdID string, threshold float64) ([]models.PantryItem, error)
	FindExpiringBetween(householdID string, from, to time.Time) ([]models.PantryItem, error)
	// SearchByProductName matches items in the household whose product name
	// contains the term, case-insensitively.
	SearchByProductName(householdID, term string) ([]models.PantryItem, error)
	// FindByHouseholdAndProduct lists the item variants of one product in the
	// household ordered by expiration date ascending, rows without an
	// expiration date last.
	FindByHouseholdAndProduct(householdID, productID string) ([]models.PantryItem, error)
}
