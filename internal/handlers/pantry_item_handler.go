package handlers

import (
	"log"
	"strconv"
	"time"

	"pantri/internal/models"
	"pantri/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PantryItemHandler handles HTTP requests for pantry items.
type PantryItemHandler struct {
	service *services.PantryItemService
}

// NewPantryItemHandler creates a new PantryItemHandler.
func NewPantryItemHandler(service *services.PantryItemService) *PantryItemHandler {
	return &PantryItemHandler{service: service}
}

// RegisterRoutes registers the pantry item routes with the Fiber app.
func (h *PantryItemHandler) RegisterRoutes(router fiber.Router) {
	items := router.Group("/pantry-items")
	items.Post("/", h.HandleCreateItem)
	items.Post("/batch", h.HandleCreateItems)
	items.Delete("/batch", h.HandleDeleteItems)
	items.Patch("/quantities", h.HandleUpdateQuantities)
	items.Get("/:id", h.HandleGetItem)
	items.Put("/:id", h.HandleUpdateItem)
	items.Patch("/:id", h.HandlePatchItem)
	items.Delete("/:id", h.HandleDeleteItem)

	router.Get("/households/:id/pantry-items", h.HandleGetHouseholdItems)
	router.Get("/households/:id/pantry-items/low-stock", h.HandleGetLowStockItems)
	router.Get("/households/:id/pantry-items/expiring", h.HandleGetExpiringItems)
	router.Get("/households/:id/pantry-items/search", h.HandleSearchItems)
	router.Get("/households/:id/pantry-items/statistics", h.HandleGetStatistics)
	router.Get("/households/:id/products/:productId/pantry-items", h.HandleGetProductVariants)
	router.Get("/locations/:id/pantry-items", h.HandleGetLocationItems)
}

// HandleCreateItem stores a quantity of a product, consolidating with an
// existing item of the same identity.
func (h *PantryItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var item models.PantryItem
	if err := c.BodyParser(&item); err != nil {
		log.Printf("Error parsing create pantry item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	created, err := h.service.CreatePantryItem(currentUserID(c), &item)
	if err != nil {
		log.Printf("Error creating pantry item: %v", err)
		return fail(c, "Could not create pantry item", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleCreateItems creates a batch of items best-effort and reports the count
// actually processed.
func (h *PantryItemHandler) HandleCreateItems(c *fiber.Ctx) error {
	var items []models.PantryItem
	if err := c.BodyParser(&items); err != nil {
		log.Printf("Error parsing batch create request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	processed, err := h.service.CreateMultiplePantryItems(currentUserID(c), items)
	if err != nil {
		log.Printf("Error batch creating pantry items: %v", err)
		return fail(c, "Could not create pantry items", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"processed": processed})
}

// DeleteItemsRequest lists the item IDs to delete in a batch.
type DeleteItemsRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// HandleDeleteItems deletes a batch of items best-effort.
func (h *PantryItemHandler) HandleDeleteItems(c *fiber.Ctx) error {
	var req DeleteItemsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing batch delete request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	processed, err := h.service.DeleteMultiplePantryItems(currentUserID(c), req.ItemIDs)
	if err != nil {
		log.Printf("Error batch deleting pantry items: %v", err)
		return fail(c, "Could not delete pantry items", err)
	}
	return c.JSON(fiber.Map{"processed": processed})
}

// UpdateQuantitiesRequest lists the quantity updates for a batch.
type UpdateQuantitiesRequest struct {
	Updates []services.QuantityUpdate `json:"updates"`
}

// HandleUpdateQuantities sets quantities for a batch of items best-effort.
func (h *PantryItemHandler) HandleUpdateQuantities(c *fiber.Ctx) error {
	var req UpdateQuantitiesRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing quantity update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	processed, err := h.service.UpdateQuantities(currentUserID(c), req.Updates)
	if err != nil {
		log.Printf("Error batch updating quantities: %v", err)
		return fail(c, "Could not update quantities", err)
	}
	return c.JSON(fiber.Map{"processed": processed})
}

// HandleGetItem retrieves a single pantry item by its ID.
func (h *PantryItemHandler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.service.GetPantryItem(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error getting pantry item %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve pantry item", err)
	}
	return c.JSON(item)
}

// HandleUpdateItem replaces a pantry item's fields.
func (h *PantryItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var input services.UpdatePantryItemInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing update pantry item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	item, err := h.service.UpdatePantryItem(currentUserID(c), c.Params("id"), input)
	if err != nil {
		log.Printf("Error updating pantry item %s: %v", c.Params("id"), err)
		return fail(c, "Could not update pantry item", err)
	}
	return c.JSON(item)
}

// HandlePatchItem applies a partial update to a pantry item.
func (h *PantryItemHandler) HandlePatchItem(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		log.Printf("Error parsing patch pantry item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	item, err := h.service.PatchPantryItem(currentUserID(c), c.Params("id"), fields)
	if err != nil {
		log.Printf("Error patching pantry item %s: %v", c.Params("id"), err)
		return fail(c, "Could not update pantry item", err)
	}
	return c.JSON(item)
}

// HandleDeleteItem deletes a pantry item.
func (h *PantryItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.service.DeletePantryItem(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error deleting pantry item %s: %v", c.Params("id"), err)
		return fail(c, "Could not delete pantry item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetHouseholdItems lists every pantry item in the household.
func (h *PantryItemHandler) HandleGetHouseholdItems(c *fiber.Ctx) error {
	items, err := h.service.GetItemsByHousehold(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error listing pantry items of household %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve pantry items", err)
	}
	return c.JSON(items)
}

// HandleGetLocationItems lists every pantry item in one location.
func (h *PantryItemHandler) HandleGetLocationItems(c *fiber.Ctx) error {
	items, err := h.service.GetItemsByLocation(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error listing pantry items of location %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve pantry items", err)
	}
	return c.JSON(items)
}

// HandleGetLowStockItems lists items below the quantity threshold. The
// threshold defaults to 1 and is overridable via ?threshold=.
func (h *PantryItemHandler) HandleGetLowStockItems(c *fiber.Ctx) error {
	threshold := 1.0
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "threshold must be a non-negative number",
			})
		}
		threshold = parsed
	}

	items, err := h.service.GetLowStockItems(currentUserID(c), c.Params("id"), threshold)
	if err != nil {
		log.Printf("Error listing low stock items of household %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve low stock items", err)
	}
	return c.JSON(items)
}

// HandleGetExpiringItems lists dated items expiring within the window. The
// window defaults to the next 7 days and is overridable via ?from= and ?to=
// (RFC 3339).
func (h *PantryItemHandler) HandleGetExpiringItems(c *fiber.Ctx) error {
	from := time.Now()
	to := from.Add(7 * 24 * time.Hour)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "from must be an RFC 3339 timestamp",
			})
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "to must be an RFC 3339 timestamp",
			})
		}
		to = parsed
	}

	items, err := h.service.GetExpiringItems(currentUserID(c), c.Params("id"), from, to)
	if err != nil {
		log.Printf("Error listing expiring items of household %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve expiring items", err)
	}
	return c.JSON(items)
}

// HandleSearchItems matches pantry items by product name.
func (h *PantryItemHandler) HandleSearchItems(c *fiber.Ctx) error {
	items, err := h.service.SearchItems(currentUserID(c), c.Params("id"), c.Query("q"))
	if err != nil {
		log.Printf("Error searching pantry items of household %s: %v", c.Params("id"), err)
		return fail(c, "Could not search pantry items", err)
	}
	return c.JSON(items)
}

// HandleGetProductVariants lists the item variants of one product ordered by
// expiration date.
func (h *PantryItemHandler) HandleGetProductVariants(c *fiber.Ctx) error {
	items, err := h.service.GetProductVariants(currentUserID(c), c.Params("id"), c.Params("productId"))
	if err != nil {
		log.Printf("Error listing variants of product %s: %v", c.Params("productId"), err)
		return fail(c, "Could not retrieve product variants", err)
	}
	return c.JSON(items)
}

// HandleGetStatistics aggregates the household's pantry state.
func (h *PantryItemHandler) HandleGetStatistics(c *fiber.Ctx) error {
	stats, err := h.service.GetStatistics(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error aggregating statistics for household %s: %v", c.Params("id"), err)
		return fail(c, "Could not compute statistics", err)
	}
	return c.JSON(stats)
}
