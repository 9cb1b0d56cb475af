package services

import (
	"fmt"
	"log"
	"time"

	"pantri/internal/models"
	"pantri/internal/repositories"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

const (
	// defaultLowStockThreshold feeds the statistics aggregation.
	defaultLowStockThreshold = 1.0
	// expiringSoonWindow is the statistics horizon for "expiring soon".
	expiringSoonWindow = 7 * 24 * time.Hour
)

// QuantityUpdate sets one item's quantity in a batch update.
type QuantityUpdate struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
}

// PantryStatistics aggregates a household's pantry state.
type PantryStatistics struct {
	TotalItems    int     `json:"total_items"`
	TotalQuantity float64 `json:"total_quantity"`
	LowStockItems int     `json:"low_stock_items"`
	ExpiringSoon  int     `json:"expiring_soon"`
}

// UpdatePantryItemInput is a full-replace update payload.
type UpdatePantryItemInput struct {
	LocationID     string     `json:"location_id" validate:"required"`
	Quantity       float64    `json:"quantity" validate:"gte=0"`
	UnitOfMeasure  string     `json:"unit_of_measure"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Notes          string     `json:"notes"`
}

// PantryItemService handles business logic related to pantry items, including
// quantity consolidation on the (location, product, expiration) identity.
type PantryItemService struct {
	identity  IdentityResolver
	items     repositories.PantryItemRepository
	locations repositories.LocationRepository
	products  repositories.ProductRepository
	members   repositories.HouseholdMemberRepository
}

// NewPantryItemService creates a new PantryItemService.
func NewPantryItemService(identity IdentityResolver, items repositories.PantryItemRepository, locations repositories.LocationRepository, products repositories.ProductRepository, members repositories.HouseholdMemberRepository) *PantryItemService {
	return &PantryItemService{
		identity:  identity,
		items:     items,
		locations: locations,
		products:  products,
		members:   members,
	}
}

// requireLocationAccess loads the location and checks the actor's membership
// in its household.
func (s *PantryItemService) requireLocationAccess(locationID, userID string) (*models.Location, error) {
	location, err := s.locations.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	isMember, err := s.members.ExistsByHouseholdAndUser(location.HouseholdID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("user %s is not a member of household %s: %w", userID, location.HouseholdID, errdefs.ErrPermissionDenied)
	}
	return location, nil
}

// requireHouseholdAccess checks the actor's membership in the household.
func (s *PantryItemService) requireHouseholdAccess(householdID, userID string) error {
	isMember, err := s.members.ExistsByHouseholdAndUser(householdID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("user %s is not a member of household %s: %w", userID, householdID, errdefs.ErrPermissionDenied)
	}
	return nil
}

// CreatePantryItem stores a quantity of a product in a location. When an item
// with the same (location, product, expiration) identity already exists, the
// incoming quantity is added to the existing row instead of inserting a
// duplicate. A nil expiration date only ever consolidates with other
// nil-expiration rows.
func (s *PantryItemService) CreatePantryItem(actorID string, item *models.PantryItem) (*models.PantryItem, error) {
	// Validate before any repository access so error precedence stays
	// deterministic.
	if item == nil || item.LocationID == "" || item.ProductID == "" {
		return nil, fmt.Errorf("location id and product id are required: %w", errdefs.ErrInvalidArgument)
	}
	if item.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireLocationAccess(item.LocationID, actor.ID); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(item.ProductID); err != nil {
		return nil, err
	}

	var existing *models.PantryItem
	if item.ExpirationDate == nil {
		existing, err = s.items.FindByLocationProductAndNoExpiration(item.LocationID, item.ProductID)
	} else {
		existing, err = s.items.FindByLocationProductAndExpiration(item.LocationID, item.ProductID, *item.ExpirationDate)
	}
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Quantity += item.Quantity
		if err := s.items.Save(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := s.items.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetPantryItem returns one item if the actor may see its household.
func (s *PantryItemService) GetPantryItem(actorID, itemID string) (*models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireLocationAccess(item.LocationID, actor.ID); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdatePantryItem replaces an item's fields. Moving the item to a location in
// a different household is forbidden; items never cross households via update.
func (s *PantryItemService) UpdatePantryItem(actorID, itemID string, input UpdatePantryItemInput) (*models.PantryItem, error) {
	if input.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	current, err := s.requireLocationAccess(item.LocationID, actor.ID)
	if err != nil {
		return nil, err
	}

	if input.LocationID != "" && input.LocationID != item.LocationID {
		target, err := s.locations.GetByID(input.LocationID)
		if err != nil {
			return nil, err
		}
		if target.HouseholdID != current.HouseholdID {
			return nil, fmt.Errorf("a pantry item cannot move to a different household: %w", errdefs.ErrInvalidArgument)
		}
		item.LocationID = target.ID
	}

	item.Quantity = input.Quantity
	item.UnitOfMeasure = input.UnitOfMeasure
	item.ExpirationDate = input.ExpirationDate
	item.Notes = input.Notes

	if err := s.items.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// PatchPantryItem applies a partial update. Unrecognized fields are ignored;
// an explicit null clears an optional field while an absent key leaves it
// untouched.
func (s *PantryItemService) PatchPantryItem(actorID, itemID string, fields map[string]interface{}) (*models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	current, err := s.requireLocationAccess(item.LocationID, actor.ID)
	if err != nil {
		return nil, err
	}

	for key, raw := range fields {
		switch key {
		case "quantity":
			value, ok := raw.(float64)
			if !ok || value < 0 {
				return nil, fmt.Errorf("quantity must be a non-negative number: %w", errdefs.ErrInvalidArgument)
			}
			item.Quantity = value
		case "unit_of_measure":
			if raw == nil {
				item.UnitOfMeasure = ""
				continue
			}
			value, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("unit of measure must be a string: %w", errdefs.ErrInvalidArgument)
			}
			item.UnitOfMeasure = value
		case "notes":
			if raw == nil {
				item.Notes = ""
				continue
			}
			value, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("notes must be a string: %w", errdefs.ErrInvalidArgument)
			}
			item.Notes = value
		case "expiration_date":
			if raw == nil {
				item.ExpirationDate = nil
				continue
			}
			value, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("expiration date must be an RFC 3339 string or null: %w", errdefs.ErrInvalidArgument)
			}
			parsed, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, fmt.Errorf("expiration date must be an RFC 3339 string or null: %w", errdefs.ErrInvalidArgument)
			}
			item.ExpirationDate = &parsed
		case "location_id":
			value, ok := raw.(string)
			if !ok || value == "" {
				return nil, fmt.Errorf("location id must be a non-empty string: %w", errdefs.ErrInvalidArgument)
			}
			if value != item.LocationID {
				target, err := s.locations.GetByID(value)
				if err != nil {
					return nil, err
				}
				if target.HouseholdID != current.HouseholdID {
					return nil, fmt.Errorf("a pantry item cannot move to a different household: %w", errdefs.ErrInvalidArgument)
				}
				item.LocationID = target.ID
			}
		}
	}

	if err := s.items.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeletePantryItem deletes one item.
func (s *PantryItemService) DeletePantryItem(actorID, itemID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return err
	}
	if _, err := s.requireLocationAccess(item.LocationID, actor.ID); err != nil {
		return err
	}
	return s.items.Delete(item.ID)
}

// CreateMultiplePantryItems creates (or consolidates) a batch of items with
// the per-item rules of CreatePantryItem. The batch is best-effort: an item
// that fails validation, lookup or authorization is skipped, and the count of
// items actually processed is returned.
func (s *PantryItemService) CreateMultiplePantryItems(actorID string, items []models.PantryItem) (int, error) {
	if _, err := s.identity.Resolve(actorID); err != nil {
		return 0, err
	}

	processed := 0
	for i := range items {
		if _, err := s.CreatePantryItem(actorID, &items[i]); err != nil {
			log.Printf("Skipping pantry item %d in batch create: %v", i, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// DeleteMultiplePantryItems deletes a batch of items, skipping any the actor
// may not touch, and returns the count actually deleted.
func (s *PantryItemService) DeleteMultiplePantryItems(actorID string, itemIDs []string) (int, error) {
	if _, err := s.identity.Resolve(actorID); err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range itemIDs {
		if err := s.DeletePantryItem(actorID, id); err != nil {
			log.Printf("Skipping pantry item %s in batch delete: %v", id, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// UpdateQuantities sets quantities for a batch of items, skipping failures,
// and returns the count actually updated.
func (s *PantryItemService) UpdateQuantities(actorID string, updates []QuantityUpdate) (int, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, update := range updates {
		if update.Quantity < 0 {
			log.Printf("Skipping quantity update for item %s: negative quantity", update.ItemID)
			continue
		}
		item, err := s.items.GetByID(update.ItemID)
		if err != nil {
			log.Printf("Skipping quantity update for item %s: %v", update.ItemID, err)
			continue
		}
		if _, err := s.requireLocationAccess(item.LocationID, actor.ID); err != nil {
			log.Printf("Skipping quantity update for item %s: %v", update.ItemID, err)
			continue
		}
		item.Quantity = update.Quantity
		if err := s.items.Save(item); err != nil {
			log.Printf("Skipping quantity update for item %s: %v", update.ItemID, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// GetItemsByHousehold lists every pantry item in the household.
func (s *PantryItemService) GetItemsByHousehold(actorID, householdID string) ([]models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHouseholdAccess(householdID, actor.ID); err != nil {
		return nil, err
	}
	return s.items.FindByHouseholdID(householdID)
}

// GetItemsByLocation lists every pantry item in one location.
func (s *PantryItemService) GetItemsByLocation(actorID, locationID string) ([]models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireLocationAccess(locationID, actor.ID); err != nil {
		return nil, err
	}
	return s.items.FindByLocationID(locationID)
}

// GetLowStockItems lists items below the quantity threshold.
func (s *PantryItemService) GetLowStockItems(actorID, householdID string, threshold float64) ([]models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHouseholdAccess(householdID, actor.ID); err != nil {
		return nil, err
	}
	return s.items.FindLowStock(householdID, threshold)
}

// GetExpiringItems lists dated items expiring within the range.
func (s *PantryItemService) GetExpiringItems(actorID, householdID string, from, to time.Time) ([]models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHouseholdAccess(householdID, actor.ID); err != nil {
		return nil, err
	}
	return s.items.FindExpiringBetween(householdID, from, to)
}

// SearchItems matches items by product name, case-insensitively.
func (s *PantryItemService) SearchItems(actorID, householdID, term string) ([]models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHouseholdAccess(householdID, actor.ID); err != nil {
		return nil, err
	}
	return s.items.SearchByProductName(householdID, term)
}

// GetProductVariants lists the item variants of one product ordered by
// expiration date, undated rows last.
func (s *PantryItemService) GetProductVariants(actorID, householdID, productID string) ([]models.PantryItem, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHouseholdAccess(householdID, actor.ID); err != nil {
		return nil, err
	}
	return s.items.FindByHouseholdAndProduct(householdID, productID)
}

// GetStatistics aggregates the household's pantry state.
func (s *PantryItemService) GetStatistics(actorID, householdID string) (*PantryStatistics, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHouseholdAccess(householdID, actor.ID); err != nil {
		return nil, err
	}

	items, err := s.items.FindByHouseholdID(householdID)
	if err != nil {
		return nil, err
	}

	stats := &PantryStatistics{TotalItems: len(items)}
	now := time.Now()
	horizon := now.Add(expiringSoonWindow)
	for _, item := range items {
		stats.TotalQuantity += item.Quantity
		if item.Quantity < defaultLowStockThreshold {
			stats.LowStockItems++
		}
		if item.ExpirationDate != nil && !item.ExpirationDate.After(horizon) && item.ExpirationDate.After(now) {
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}
