package repositories

import (
	"errors"
	"fmt"

	"pantri/internal/models"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMLocationRepository is a GORM implementation of LocationRepository.
type GORMLocationRepository struct {
	db *gorm.DB
}

// NewGORMLocationRepository creates a new instance of GORMLocationRepository.
func NewGORMLocationRepository(db *gorm.DB) *GORMLocationRepository {
	return &GORMLocationRepository{
		db: db,
	}
}

// Create creates a new location in the database.
func (r *GORMLocationRepository) Create(location *models.Location) error {
	if location.ID == "" {
		location.ID = uuid.New().String()
	}
	if err := r.db.Create(location).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// GetByID retrieves a location by its ID from the database.
func (r *GORMLocationRepository) GetByID(id string) (*models.Location, error) {
	var location models.Location
	if err := r.db.First(&location, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("location with ID %s: %w", id, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get location by ID %s: %w", id, err)
	}
	return &location, nil
}

// FindByHouseholdID returns all locations of a household.
func (r *GORMLocationRepository) FindByHouseholdID(householdID string) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.Where("household_id = ?", householdID).Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to find locations of household %s: %w", householdID, err)
	}
	return locations, nil
}

// ExistsByHouseholdIDAndName matches case-sensitively within the household.
func (r *GORMLocationRepository) ExistsByHouseholdIDAndName(householdID, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Location{}).
		Where("household_id = ? AND name = ?", householdID, name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check location name %s in household %s: %w", name, householdID, err)
	}
	return count > 0, nil
}

// Save persists all fields of an existing location.
func (r *GORMLocationRepository) Save(location *models.Location) error {
	res := r.db.Save(location)
	if res.Error != nil {
		return fmt.Errorf("failed to save location: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("location with ID %s: %w", location.ID, errdefs.ErrNotFound)
	}
	return nil
}

// Delete removes the location. A location still holding pantry items cannot be
// deleted; that condition is surfaced as a domain error instead of a raw
// storage failure.
func (r *GORMLocationRepository) Delete(id string) error {
	var itemCount int64
	err := r.db.Model(&models.PantryItem{}).Where("location_id = ?", id).Count(&itemCount).Error
	if err != nil {
		return fmt.Errorf("failed to check pantry items of location %s: %w", id, err)
	}
	if itemCount > 0 {
		return fmt.Errorf("location %s still has %d pantry item(s) stored in it: %w", id, itemCount, errdefs.ErrUnavailable)
	}

	res := r.db.Delete(&models.Location{}, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("location %s is still referenced by pantry items: %w", id, errdefs.ErrUnavailable)
		}
		return fmt.Errorf("failed to delete location: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("location with ID %s: %w", id, errdefs.ErrNotFound)
	}
	return nil
}
