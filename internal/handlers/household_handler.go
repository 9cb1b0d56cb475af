package handlers

import (
	"log"

	"pantri/internal/models"
	"pantri/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HouseholdHandler handles HTTP requests for households and their members.
type HouseholdHandler struct {
	households *services.HouseholdService
	members    *services.HouseholdMemberService
}

// NewHouseholdHandler creates a new HouseholdHandler.
func NewHouseholdHandler(households *services.HouseholdService, members *services.HouseholdMemberService) *HouseholdHandler {
	return &HouseholdHandler{
		households: households,
		members:    members,
	}
}

// RegisterRoutes registers the household routes with the Fiber app.
func (h *HouseholdHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/households")
	routes.Post("/", h.HandleCreateHousehold)
	routes.Get("/", h.HandleGetMyHouseholds)
	routes.Get("/search", h.HandleSearchHouseholds)
	routes.Get("/:id", h.HandleGetHousehold)
	routes.Put("/:id", h.HandleUpdateHousehold)
	routes.Patch("/:id", h.HandlePatchHousehold)
	routes.Delete("/:id", h.HandleDeleteHousehold)
	routes.Post("/:id/leave", h.HandleLeaveHousehold)
	routes.Post("/:id/transfer-ownership", h.HandleTransferOwnership)

	routes.Post("/:id/members", h.HandleAddMember)
	routes.Get("/:id/members", h.HandleGetMembers)
	routes.Get("/:id/members/:memberId", h.HandleGetMember)
	routes.Put("/:id/members/:memberId/role", h.HandleUpdateMemberRole)
	routes.Delete("/:id/members/:memberId", h.HandleRemoveMember)
}

// HouseholdRequest represents the request body for creating or renaming a
// household.
type HouseholdRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleCreateHousehold creates a household owned by the caller.
func (h *HouseholdHandler) HandleCreateHousehold(c *fiber.Ctx) error {
	var req HouseholdRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create household request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	household, err := h.households.CreateHousehold(currentUserID(c), req.Name)
	if err != nil {
		log.Printf("Error creating household: %v", err)
		return fail(c, "Could not create household", err)
	}
	return c.Status(fiber.StatusCreated).JSON(household)
}

// HandleGetMyHouseholds lists the caller's households.
func (h *HouseholdHandler) HandleGetMyHouseholds(c *fiber.Ctx) error {
	households, err := h.households.GetUserHouseholds(currentUserID(c))
	if err != nil {
		log.Printf("Error listing households: %v", err)
		return fail(c, "Could not retrieve households", err)
	}
	return c.JSON(households)
}

// HandleSearchHouseholds searches the caller's households by name substring.
func (h *HouseholdHandler) HandleSearchHouseholds(c *fiber.Ctx) error {
	households, err := h.households.SearchHouseholds(currentUserID(c), c.Query("q"))
	if err != nil {
		log.Printf("Error searching households: %v", err)
		return fail(c, "Could not search households", err)
	}
	return c.JSON(households)
}

// HandleGetHousehold retrieves a single household by its ID.
func (h *HouseholdHandler) HandleGetHousehold(c *fiber.Ctx) error {
	household, err := h.households.GetHouseholdByID(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error getting household %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve household", err)
	}
	return c.JSON(household)
}

// HandleUpdateHousehold replaces the household's name.
func (h *HouseholdHandler) HandleUpdateHousehold(c *fiber.Ctx) error {
	var req HouseholdRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update household request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	household, err := h.households.UpdateHousehold(currentUserID(c), c.Params("id"), req.Name)
	if err != nil {
		log.Printf("Error updating household %s: %v", c.Params("id"), err)
		return fail(c, "Could not update household", err)
	}
	return c.JSON(household)
}

// HandlePatchHousehold applies a partial update to the household.
func (h *HouseholdHandler) HandlePatchHousehold(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		log.Printf("Error parsing patch household request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	household, err := h.households.PatchHousehold(currentUserID(c), c.Params("id"), fields)
	if err != nil {
		log.Printf("Error patching household %s: %v", c.Params("id"), err)
		return fail(c, "Could not update household", err)
	}
	return c.JSON(household)
}

// HandleDeleteHousehold deletes the household and its memberships.
func (h *HouseholdHandler) HandleDeleteHousehold(c *fiber.Ctx) error {
	if err := h.households.DeleteHousehold(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error deleting household %s: %v", c.Params("id"), err)
		return fail(c, "Could not delete household", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleLeaveHousehold removes the caller's own membership.
func (h *HouseholdHandler) HandleLeaveHousehold(c *fiber.Ctx) error {
	if err := h.households.LeaveHousehold(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error leaving household %s: %v", c.Params("id"), err)
		return fail(c, "Could not leave household", err)
	}
	return c.JSON(fiber.Map{"message": "Left household successfully"})
}

// TransferOwnershipRequest names the member receiving the OWNER role.
type TransferOwnershipRequest struct {
	NewOwnerUserID string `json:"new_owner_user_id" validate:"required"`
}

// HandleTransferOwnership moves the OWNER role to another member.
func (h *HouseholdHandler) HandleTransferOwnership(c *fiber.Ctx) error {
	var req TransferOwnershipRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing transfer ownership request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.NewOwnerUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "new_owner_user_id is required",
		})
	}

	if err := h.households.TransferOwnership(currentUserID(c), c.Params("id"), req.NewOwnerUserID); err != nil {
		log.Printf("Error transferring ownership of household %s: %v", c.Params("id"), err)
		return fail(c, "Could not transfer ownership", err)
	}
	return c.JSON(fiber.Map{"message": "Ownership transferred successfully"})
}

// MemberRequest represents the request body for adding a member.
type MemberRequest struct {
	UserID string               `json:"user_id" validate:"required"`
	Role   models.HouseholdRole `json:"role" validate:"required"`
}

// HandleAddMember adds an existing user to the household.
func (h *HouseholdHandler) HandleAddMember(c *fiber.Ctx) error {
	var req MemberRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add member request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	member, err := h.members.AddMemberToHousehold(currentUserID(c), c.Params("id"), req.UserID, req.Role)
	if err != nil {
		log.Printf("Error adding member to household %s: %v", c.Params("id"), err)
		return fail(c, "Could not add member", err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// HandleGetMembers lists the household's memberships.
func (h *HouseholdHandler) HandleGetMembers(c *fiber.Ctx) error {
	members, err := h.members.GetHouseholdMembers(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error listing members of household %s: %v", c.Params("id"), err)
		return fail(c, "Could not retrieve members", err)
	}
	return c.JSON(members)
}

// HandleGetMember retrieves one membership row.
func (h *HouseholdHandler) HandleGetMember(c *fiber.Ctx) error {
	member, err := h.members.GetMemberByID(currentUserID(c), c.Params("id"), c.Params("memberId"))
	if err != nil {
		log.Printf("Error getting member %s: %v", c.Params("memberId"), err)
		return fail(c, "Could not retrieve member", err)
	}
	return c.JSON(member)
}

// RoleRequest carries the new role for a member.
type RoleRequest struct {
	Role models.HouseholdRole `json:"role" validate:"required"`
}

// HandleUpdateMemberRole changes a member's role.
func (h *HouseholdHandler) HandleUpdateMemberRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing role update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	member, err := h.members.UpdateMemberRole(currentUserID(c), c.Params("id"), c.Params("memberId"), req.Role)
	if err != nil {
		log.Printf("Error updating role of member %s: %v", c.Params("memberId"), err)
		return fail(c, "Could not update member role", err)
	}
	return c.JSON(member)
}

// HandleRemoveMember removes a member from the household.
func (h *HouseholdHandler) HandleRemoveMember(c *fiber.Ctx) error {
	if err := h.members.RemoveMember(currentUserID(c), c.Params("id"), c.Params("memberId")); err != nil {
		log.Printf("Error removing member %s: %v", c.Params("memberId"), err)
		return fail(c, "Could not remove member", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
