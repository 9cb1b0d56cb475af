package handlers

import (
	"log"

	"pantri/internal/models"
	"pantri/internal/services"

	"github.com/gofiber/fiber/v2"
)

// InvitationHandler handles HTTP requests for household invitations.
type InvitationHandler struct {
	service *services.HouseholdInvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(service *services.HouseholdInvitationService) *InvitationHandler {
	return &InvitationHandler{service: service}
}

// RegisterRoutes registers the invitation routes with the Fiber app.
func (h *InvitationHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/households/:id/invitations", h.HandleSendInvitation)
	invitations := router.Group("/invitations")
	invitations.Get("/", h.HandleGetMyInvitations)
	invitations.Post("/:id/accept", h.HandleAcceptInvitation)
	invitations.Post("/:id/decline", h.HandleDeclineInvitation)
	invitations.Delete("/:id", h.HandleCancelInvitation)
}

// SendInvitationRequest represents the request body for inviting someone. One
// of user_id or email must be set.
type SendInvitationRequest struct {
	UserID string               `json:"user_id"`
	Email  string               `json:"email"`
	Role   models.HouseholdRole `json:"role"`
}

// HandleSendInvitation invites a user or email address into a household.
func (h *InvitationHandler) HandleSendInvitation(c *fiber.Ctx) error {
	var req SendInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing send invitation request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	invitation, err := h.service.SendInvitation(currentUserID(c), c.Params("id"), services.SendInvitationInput{
		InvitedUserID: req.UserID,
		InvitedEmail:  req.Email,
		ProposedRole:  req.Role,
	})
	if err != nil {
		log.Printf("Error sending invitation for household %s: %v", c.Params("id"), err)
		return fail(c, "Could not send invitation", err)
	}
	return c.Status(fiber.StatusCreated).JSON(invitation)
}

// HandleGetMyInvitations lists the caller's invitations, linking any pending
// email-only invitations first.
func (h *InvitationHandler) HandleGetMyInvitations(c *fiber.Ctx) error {
	invitations, err := h.service.GetMyInvitations(currentUserID(c))
	if err != nil {
		log.Printf("Error listing invitations: %v", err)
		return fail(c, "Could not retrieve invitations", err)
	}
	return c.JSON(invitations)
}

// HandleAcceptInvitation accepts an invitation and returns the new membership.
func (h *InvitationHandler) HandleAcceptInvitation(c *fiber.Ctx) error {
	member, err := h.service.AcceptInvitation(currentUserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error accepting invitation %s: %v", c.Params("id"), err)
		return fail(c, "Could not accept invitation", err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// HandleDeclineInvitation declines an invitation.
func (h *InvitationHandler) HandleDeclineInvitation(c *fiber.Ctx) error {
	if err := h.service.DeclineInvitation(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error declining invitation %s: %v", c.Params("id"), err)
		return fail(c, "Could not decline invitation", err)
	}
	return c.JSON(fiber.Map{"message": "Invitation declined"})
}

// HandleCancelInvitation withdraws a pending invitation.
func (h *InvitationHandler) HandleCancelInvitation(c *fiber.Ctx) error {
	if err := h.service.CancelInvitation(currentUserID(c), c.Params("id")); err != nil {
		log.Printf("Error cancelling invitation %s: %v", c.Params("id"), err)
		return fail(c, "Could not cancel invitation", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
