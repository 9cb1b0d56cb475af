package services

import (
	"fmt"

	"pantri/internal/models"
	"pantri/internal/repositories"

	"github.com/containerd/errdefs"
)

// IdentityResolver resolves an authenticated user id (extracted from the
// request credential by the auth layer) to the acting account. Every service
// consumes it for the actor lookup.
type IdentityResolver interface {
	Resolve(userID string) (*models.User, error)
}

type userIdentityResolver struct {
	users repositories.UserRepository
}

// NewIdentityResolver creates an IdentityResolver backed by the user repository.
func NewIdentityResolver(users repositories.UserRepository) IdentityResolver {
	return &userIdentityResolver{users: users}
}

// Resolve returns the acting user, or a not-found error when the id is empty
// or no account exists for it.
func (r *userIdentityResolver) Resolve(userID string) (*models.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("acting user is not set: %w", errdefs.ErrNotFound)
	}
	user, err := r.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("acting user %s could not be resolved: %w", userID, errdefs.ErrNotFound)
	}
	return user, nil
}

// EventPublisher publishes domain events for external workers (e.g. the mail
// worker delivering invitation emails). Implementations must be safe to call
// concurrently. A nil publisher disables events.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}
