package repositories

import (
	"pantri/internal/models"
)

// ProductRepository defines the interface for product catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByUPC(upc string) (*models.Product, error)
	ExistsByUPC(upc string) (bool, error)
	Create(product *models.Product) error
	Save(product *models.Product) error
	Delete(id string) error
	// FindRequiringRetry returns products flagged for API enrichment retry with
	// fewer than maxAttempts attempts so far.
	FindRequiringRetry(maxAttempts int) ([]models.Product, error)
}
