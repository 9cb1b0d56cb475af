package handlers

import (
	"log"

	"pantri/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LocationHandler handles HTTP requests for storage locations.
type LocationHandler struct {
	service *services.LocationService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(service *services.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// RegisterRoutes registers the location routes with the Fiber app.
func (h *LocationHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/households/:id/locations", h.HandleCreateLocation)
	router.Get("/households/:id/locations", h.HandleGetHouseholdLocations)
	locations := router.Group("/locations")
	locations.Get("/:id", h.HandleGetLocation)
	locations.Put("/:id", h.HandleUpdateLocation)
	locations.Patch("/:id", h.HandlePatchLocation)
	locations.Delete("/:id", h.HandleDeleteLocation)
}

// LocationRequest represents the request body for creating or updating a
// location.
type LocationRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// HandleCreateLocation creates a location in the household.
func (h *LocationHandler) HandleCreateLocation(c *fiber.Ctx) error {
	var req LocationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create location request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	location, err := h.service.CreateLocation(currentUserID(c), c.Params("id"), req.Name, req.Description)
	if err != nil {
		log.Printf("Error creating location in household %s: %v", c.Params("id"), err)
		return fail(c, "Could not create location", err)
	}
	return c.Status(fiber.StatusCreated).JSON(location)
}

// HandleGetHouseholdLocations lists the household's locations.
func (h *LocationHandler) HandleGetHouseholdLocations(c *fiber.Ctx) error {
	locations, err := h.service.GetHouseholdLocations(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error listing locations of household %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve locations", err)
	}
	return c.JSON(locations)
}

// HandleGetLocation retrieves a single location by its ID.
func (h *LocationHandler) HandleGetLocation(c *fiber.Ctx) error {
	location, err := h.service.GetLocation(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error getting location %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve location", err)
	}
	return c.JSON(location)
}

// HandleUpdateLocation replaces the location's name and description.
func (h *LocationHandler) HandleUpdateLocation(c *fiber.Ctx) error {
	var req LocationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update location request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	location, err := h.service.UpdateLocation(currentUserID(c), c.Params("id"), req.Name, req.Description)
	if err != nil {
		log.Printf("Error updating location %s: %v", c.Params("id"), err)
		return fail(c, "Could not update location", err)
	}
	return c.JSON(location)
}

// HandlePatchLocation applies a partial update to the location.
func (h *LocationHandler) HandlePatchLocation(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		log.Printf("Error parsing patch location request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	location, err := h.service.PatchLocation(currentUserID(c), c.Params("id"), fields)
	if err != nil {
		log.Printf("Error patching location %s: %v", c.Params("id"), err)
		return fail(c, "Could not update location", err)
	}
	return c.JSON(location)
}

// HandleDeleteLocation deletes the location if no pantry items remain in it.
func (h *LocationHandler) HandleDeleteLocation(c *fiber.Ctx) error {
	if err := h.service.DeleteLocation(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error deleting location %s: %v", c.Params("id"), err)
		return fail(c, "Could not delete location", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
