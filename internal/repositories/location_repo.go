package repositories

import "pantri/internal/models"

// LocationRepository defines the interface for storage location data access.
type LocationRepository interface {
	Create(location *models.Location) error
	GetByID(id string) (*models.Location, error)
	FindByHouseholdID(householdID string) ([]models.Location, error)
	// ExistsByHouseholdIDAndName matches case-sensitively within the household.
	ExistsByHouseholdIDAndName(householdID, name string) (bool, error)
	Save(location *models.Location) error
	// Delete removes the location. A referential-constraint failure (pantry
	// items still stored there) is surfaced as a domain unavailable error.
	Delete(id string) error
}
