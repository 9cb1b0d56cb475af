package handlers

import (
	"log"

	"pantri/internal/models"
	"pantri/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for catalog products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/products")
	routes.Get("/", h.HandleGetProducts)
	routes.Get("/upc/:upc", h.HandleGetProductByUPC)
	routes.Get("/:id", h.HandleGetProductByID)
	routes.Post("/", h.HandleCreateProduct)
	routes.Put("/:id", h.HandleUpdateProduct)
	routes.Patch("/:id", h.HandlePatchProduct)
	routes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return fail(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting product %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleGetProductByUPC retrieves a single product by its UPC.
func (h *ProductHandler) HandleGetProductByUPC(c *fiber.Ctx) error {
	product, err := h.service.GetProductByUPC(c.Params("upc"))
	if err != nil {
		log.Printf("Error getting product by UPC %s: %v", c.Params("upc"), err)
		return fail(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product, enriching it from the UPC lookup when
// one is configured.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	created, err := h.service.CreateProduct(currentUserID(c), &product)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return fail(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct replaces a product's catalog fields.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = c.Params("id")

	updated, err := h.service.UpdateProduct(currentUserID(c), &product)
	if err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return fail(c, "Could not update product", err)
	}
	return c.JSON(updated)
}

// HandlePatchProduct applies a partial update to a product.
func (h *ProductHandler) HandlePatchProduct(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		log.Printf("Error parsing patch product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.PatchProduct(currentUserID(c), c.Params("id"), fields)
	if err != nil {
		log.Printf("Error patching product %s: %v", c.Params("id"), err)
		return fail(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return fail(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
