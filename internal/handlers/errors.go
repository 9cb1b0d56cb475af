package handlers

import (
	"github.com/containerd/errdefs"
	"github.com/gofiber/fiber/v2"
)

// statusFromError maps a service error to the HTTP status it should surface
// as. Anything unclassified is a 500.
func statusFromError(err error) int {
	switch {
	case errdefs.IsInvalidArgument(err):
		return fiber.StatusBadRequest
	case errdefs.IsNotFound(err):
		return fiber.StatusNotFound
	case errdefs.IsPermissionDenied(err):
		return fiber.StatusForbidden
	case errdefs.IsConflict(err), errdefs.IsFailedPrecondition(err):
		return fiber.StatusConflict
	case errdefs.IsUnavailable(err):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes the error as a JSON body with the mapped status.
func fail(c *fiber.Ctx, message string, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// currentUserID reads the user id the auth middleware stored on the request.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
