package services

import (
	"fmt"
	"log"

	"pantri/internal/models"
	"pantri/internal/repositories"
	"pantri/pkg/openfoodfacts"

	"github.com/containerd/errdefs"
)

// UPCLookup fetches catalog data for a UPC from an external source. Every kind
// of failure (transport, not found, malformed response) is treated uniformly
// as "enrichment unavailable".
type UPCLookup interface {
	FetchProductData(upc string) (*openfoodfacts.ProductData, error)
}

// ProductService handles business logic related to catalog products and their
// external enrichment bookkeeping.
type ProductService struct {
	identity IdentityResolver
	repo     repositories.ProductRepository
	lookup   UPCLookup // optional, may be nil
}

// NewProductService creates a new ProductService. A nil lookup disables
// enrichment; products are then created as plain manual data.
func NewProductService(identity IdentityResolver, repo repositories.ProductRepository, lookup UPCLookup) *ProductService {
	return &ProductService{
		identity: identity,
		repo:     repo,
		lookup:   lookup,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductByUPC retrieves a single product by its UPC.
func (s *ProductService) GetProductByUPC(upc string) (*models.Product, error) {
	return s.repo.GetByUPC(upc)
}

// CreateProduct creates a catalog product and attempts to enrich it via the
// external UPC lookup. On lookup success the product is marked as API-sourced;
// on any lookup failure it falls back to manual data flagged for retry.
// Creation never fails merely because the enrichment call failed.
func (s *ProductService) CreateProduct(actorID string, product *models.Product) (*models.Product, error) {
	if product == nil || product.UPC == "" {
		return nil, fmt.Errorf("a product UPC is required: %w", errdefs.ErrInvalidArgument)
	}
	if product.DefaultExpirationDays < 0 {
		return nil, fmt.Errorf("default expiration days must not be negative: %w", errdefs.ErrInvalidArgument)
	}

	if _, err := s.identity.Resolve(actorID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUPC(product.UPC)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("a product with UPC %s already exists: %w", product.UPC, errdefs.ErrConflict)
	}

	manualName := product.Name
	if s.lookup != nil {
		if data, lookupErr := s.lookup.FetchProductData(product.UPC); lookupErr == nil && data != nil {
			applyProductData(product, data)
			if manualName != "" && manualName != data.Name {
				product.DataSource = models.DataSourceHybrid
			} else {
				product.DataSource = models.DataSourceOpenFoodFacts
			}
			product.RequiresAPIRetry = false
			product.RetryAttempts = 0
		} else {
			log.Printf("Warning: UPC lookup failed for %s, falling back to manual data: %v", product.UPC, lookupErr)
			product.DataSource = models.DataSourceManual
			product.RequiresAPIRetry = true
			product.RetryAttempts = 0
		}
	} else {
		product.DataSource = models.DataSourceManual
		product.RequiresAPIRetry = false
		product.RetryAttempts = 0
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// applyProductData fills catalog fields from lookup data, keeping manual
// values where they exist so user corrections survive enrichment.
func applyProductData(product *models.Product, data *openfoodfacts.ProductData) {
	if product.Name == "" {
		product.Name = data.Name
	}
	if product.Brand == "" {
		product.Brand = data.Brand
	}
	if product.Category == "" {
		product.Category = data.Category
	}
}

// UpdateProduct replaces a product's catalog fields. Requires the application
// ADMIN role.
func (s *ProductService) UpdateProduct(actorID string, product *models.Product) (*models.Product, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("updating products requires the application ADMIN role: %w", errdefs.ErrPermissionDenied)
	}

	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return nil, err
	}
	if product.UPC != "" && product.UPC != existing.UPC {
		exists, err := s.repo.ExistsByUPC(product.UPC)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("a product with UPC %s already exists: %w", product.UPC, errdefs.ErrConflict)
		}
		existing.UPC = product.UPC
	}
	existing.Name = product.Name
	existing.Brand = product.Brand
	existing.Category = product.Category
	existing.DefaultExpirationDays = product.DefaultExpirationDays

	if err := s.repo.Save(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// PatchProduct applies a partial update to a product's catalog fields.
// Unrecognized fields are ignored. Requires the application ADMIN role.
func (s *ProductService) PatchProduct(actorID, productID string, fields map[string]interface{}) (*models.Product, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("updating products requires the application ADMIN role: %w", errdefs.ErrPermissionDenied)
	}

	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	for key, raw := range fields {
		switch key {
		case "name":
			value, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("product name must be a string: %w", errdefs.ErrInvalidArgument)
			}
			product.Name = value
		case "brand":
			value, _ := raw.(string)
			product.Brand = value
		case "category":
			value, _ := raw.(string)
			product.Category = value
		case "default_expiration_days":
			value, ok := raw.(float64) // JSON numbers decode as float64
			if !ok || value < 0 {
				return nil, fmt.Errorf("default expiration days must be a non-negative number: %w", errdefs.ErrInvalidArgument)
			}
			product.DefaultExpirationDays = int(value)
		}
	}

	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product. Requires the application ADMIN role.
func (s *ProductService) DeleteProduct(actorID, productID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("deleting products requires the application ADMIN role: %w", errdefs.ErrPermissionDenied)
	}
	return s.repo.Delete(productID)
}

// RetryAPIEnrichment re-attempts the UPC lookup for every product flagged for
// retry with fewer than the capped attempts. A success clears the flag and
// marks the product API-sourced; a failure increments the counter, and at the
// cap the flag is cleared permanently. Returns the number of successful
// enrichments. Intended to run on a schedule outside request context.
func (s *ProductService) RetryAPIEnrichment() (int, error) {
	if s.lookup == nil {
		return 0, nil
	}

	candidates, err := s.repo.FindRequiringRetry(models.MaxEnrichmentAttempts)
	if err != nil {
		return 0, err
	}

	enriched := 0
	for i := range candidates {
		product := &candidates[i]
		data, lookupErr := s.lookup.FetchProductData(product.UPC)
		if lookupErr == nil && data != nil {
			applyProductData(product, data)
			product.DataSource = models.DataSourceOpenFoodFacts
			product.RequiresAPIRetry = false
			if err := s.repo.Save(product); err != nil {
				log.Printf("Warning: failed to save enriched product %s: %v", product.ID, err)
				continue
			}
			enriched++
			continue
		}

		product.RetryAttempts++
		if product.RetryAttempts >= models.MaxEnrichmentAttempts {
			// Give up permanently.
			product.RequiresAPIRetry = false
		}
		if err := s.repo.Save(product); err != nil {
			log.Printf("Warning: failed to record retry attempt for product %s: %v", product.ID, err)
		}
	}
	return enriched, nil
}
