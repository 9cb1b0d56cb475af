package repositories

import (
	"fmt"

	"pantri/internal/models"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ID %s: %w", id, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByUPC retrieves a single product by its UPC from the database.
func (r *GORMProductRepository) GetByUPC(upc string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "upc = ?", upc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with UPC %s: %w", upc, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by UPC %s: %w", upc, err)
	}
	return &product, nil
}

// ExistsByUPC reports whether a product with the UPC exists.
func (r *GORMProductRepository) ExistsByUPC(upc string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("upc = ?", upc).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product UPC %s: %w", upc, err)
	}
	return count > 0, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Save updates all fields of an existing product in the database.
func (r *GORMProductRepository) Save(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to save product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows were
		// affected for an update, so we check RowsAffected.
		return fmt.Errorf("product with ID %s: %w", product.ID, errdefs.ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, errdefs.ErrNotFound)
	}
	return nil
}

// FindRequiringRetry returns products flagged for API enrichment retry with
// fewer than maxAttempts attempts so far.
func (r *GORMProductRepository) FindRequiringRetry(maxAttempts int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Where("requires_api_retry = ? AND retry_attempts < ?", true, maxAttempts).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products requiring retry: %w", err)
	}
	return products, nil
}
