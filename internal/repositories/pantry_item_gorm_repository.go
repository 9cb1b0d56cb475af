package repositories

import (
	"fmt"
	"strings"
	"time"

	"pantri/internal/models"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPantryItemRepository is a GORM implementation of PantryItemRepository.
type GORMPantryItemRepository struct {
	db *gorm.DB
}

// NewGORMPantryItemRepository creates a new instance of GORMPantryItemRepository.
func NewGORMPantryItemRepository(db *gorm.DB) *GORMPantryItemRepository {
	return &GORMPantryItemRepository{
		db: db,
	}
}

// Create creates a new pantry item in the database.
func (r *GORMPantryItemRepository) Create(item *models.PantryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create pantry item: %w", err)
	}
	return nil
}

// GetByID retrieves a pantry item by its ID from the database.
func (r *GORMPantryItemRepository) GetByID(id string) (*models.PantryItem, error) {
	var item models.PantryItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("pantry item with ID %s: %w", id, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pantry item by ID %s: %w", id, err)
	}
	return &item, nil
}

// Save persists all fields of an existing pantry item.
func (r *GORMPantryItemRepository) Save(item *models.PantryItem) error {
	res := r.db.Save(item)
	if res.Error != nil {
		return fmt.Errorf("failed to save pantry item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pantry item with ID %s: %w", item.ID, errdefs.ErrNotFound)
	}
	return nil
}

// Delete deletes a pantry item by its ID from the database.
func (r *GORMPantryItemRepository) Delete(id string) error {
	res := r.db.Delete(&models.PantryItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete pantry item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pantry item with ID %s: %w", id, errdefs.ErrNotFound)
	}
	return nil
}

// FindByLocationProductAndExpiration looks up the identity row for a dated
// item. Returns (nil, nil) when no matching row exists.
func (r *GORMPantryItemRepository) FindByLocationProductAndExpiration(locationID, productID string, expirationDate time.Time) (*models.PantryItem, error) {
	var item models.PantryItem
	err := r.db.First(&item, "location_id = ? AND product_id = ? AND expiration_date = ?",
		locationID, productID, expirationDate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pantry item by identity: %w", err)
	}
	return &item, nil
}

// FindByLocationProductAndNoExpiration looks up the identity row for an item
// without an expiration date. Returns (nil, nil) when no matching row exists.
func (r *GORMPantryItemRepository) FindByLocationProductAndNoExpiration(locationID, productID string) (*models.PantryItem, error) {
	var item models.PantryItem
	err := r.db.First(&item, "location_id = ? AND product_id = ? AND expiration_date IS NULL",
		locationID, productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pantry item by identity: %w", err)
	}
	return &item, nil
}

func (r *GORMPantryItemRepository) householdScope(householdID string) *gorm.DB {
	return r.db.
		Joins("JOIN locations ON locations.id = pantry_items.location_id").
		Where("locations.household_id = ? AND locations.deleted_at IS NULL", householdID)
}

// FindByHouseholdID returns all pantry items stored in the household.
func (r *GORMPantryItemRepository) FindByHouseholdID(householdID string) ([]models.PantryItem, error) {
	var items []models.PantryItem
	if err := r.householdScope(householdID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find pantry items of household %s: %w", householdID, err)
	}
	return items, nil
}

// FindByLocationID returns all pantry items stored in the location.
func (r *GORMPantryItemRepository) FindByLocationID(locationID string) ([]models.PantryItem, error) {
	var items []models.PantryItem
	if err := r.db.Where("location_id = ?", locationID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find pantry items of location %s: %w", locationID, err)
	}
	return items, nil
}

// FindLowStock returns pantry items in the household with a quantity below the
// threshold.
func (r *GORMPantryItemRepository) FindLowStock(householdID string, threshold float64) ([]models.PantryItem, error) {
	var items []models.PantryItem
	err := r.householdScope(householdID).
		Where("pantry_items.quantity < ?", threshold).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find low-stock items of household %s: %w", householdID, err)
	}
	return items, nil
}

// FindExpiringBetween returns dated pantry items in the household expiring
// within the range, inclusive.
func (r *GORMPantryItemRepository) FindExpiringBetween(householdID string, from, to time.Time) ([]models.PantryItem, error) {
	var items []models.PantryItem
	err := r.householdScope(householdID).
		Where("pantry_items.expiration_date BETWEEN ? AND ?", from, to).
		Order("pantry_items.expiration_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring items of household %s: %w", householdID, err)
	}
	return items, nil
}

// SearchByProductName matches items in the household whose product name
// contains the term, case-insensitively.
func (r *GORMPantryItemRepository) SearchByProductName(householdID, term string) ([]models.PantryItem, error) {
	var items []models.PantryItem
	pattern := "%" + strings.ToLower(term) + "%"
	err := r.householdScope(householdID).
		Joins("JOIN products ON products.id = pantry_items.product_id").
		Where("LOWER(products.name) LIKE ?", pattern).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search pantry items of household %s: %w", householdID, err)
	}
	return items, nil
}

// FindByHouseholdAndProduct lists the item variants of one product in the
// household ordered by expiration date ascending, undated rows last.
func (r *GORMPantryItemRepository) FindByHouseholdAndProduct(householdID, productID string) ([]models.PantryItem, error) {
	var items []models.PantryItem
	err := r.householdScope(householdID).
		Where("pantry_items.product_id = ?", productID).
		Order("pantry_items.expiration_date IS NULL, pantry_items.expiration_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find product variants in household %s: %w", householdID, err)
	}
	return items, nil
}
