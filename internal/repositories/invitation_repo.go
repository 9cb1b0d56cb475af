package repositories

import "pantri/internal/models"

// HouseholdInvitationRepository defines the interface for invitation data access.
type HouseholdInvitationRepository interface {
	Create(invitation *models.HouseholdInvitation) error
	GetByID(id string) (*models.HouseholdInvitation, error)
	Save(invitation *models.HouseholdInvitation) error
	Delete(id string) error
	// HasPendingByHouseholdAndUser reports whether a PENDING invitation for the
	// user already exists in the household.
	HasPendingByHouseholdAndUser(householdID, userID string) (bool, error)
	// HasPendingByHouseholdAndEmail reports whether a PENDING invitation for the
	// normalized email already exists in the household.
	HasPendingByHouseholdAndEmail(householdID, email string) (bool, error)
	FindByInvitedUserID(userID string) ([]models.HouseholdInvitation, error)
	// LinkEmailInvitationsToUser bulk-updates all PENDING email-only invitations
	// matching the normalized email so they reference the user instead, clearing
	// the invited email. Returns the number of rows affected.
	LinkEmailInvitationsToUser(userID, email string) (int64, error)
}
