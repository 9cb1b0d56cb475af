package repositories

import (
	"fmt"

	"pantri/internal/models"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMHouseholdInvitationRepository is a GORM implementation of
// HouseholdInvitationRepository.
type GORMHouseholdInvitationRepository struct {
	db *gorm.DB
}

// NewGORMHouseholdInvitationRepository creates a new instance of
// GORMHouseholdInvitationRepository.
func NewGORMHouseholdInvitationRepository(db *gorm.DB) *GORMHouseholdInvitationRepository {
	return &GORMHouseholdInvitationRepository{
		db: db,
	}
}

// Create creates a new invitation in the database.
func (r *GORMHouseholdInvitationRepository) Create(invitation *models.HouseholdInvitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}
	if err := r.db.Create(invitation).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetByID retrieves an invitation by its ID from the database.
func (r *GORMHouseholdInvitationRepository) GetByID(id string) (*models.HouseholdInvitation, error) {
	var invitation models.HouseholdInvitation
	if err := r.db.First(&invitation, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invitation with ID %s: %w", id, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invitation by ID %s: %w", id, err)
	}
	return &invitation, nil
}

// Save persists all fields of an existing invitation.
func (r *GORMHouseholdInvitationRepository) Save(invitation *models.HouseholdInvitation) error {
	res := r.db.Save(invitation)
	if res.Error != nil {
		return fmt.Errorf("failed to save invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invitation with ID %s: %w", invitation.ID, errdefs.ErrNotFound)
	}
	return nil
}

// Delete deletes an invitation by its ID from the database.
func (r *GORMHouseholdInvitationRepository) Delete(id string) error {
	res := r.db.Delete(&models.HouseholdInvitation{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invitation with ID %s: %w", id, errdefs.ErrNotFound)
	}
	return nil
}

// HasPendingByHouseholdAndUser reports whether a PENDING invitation for the
// user already exists in the household.
func (r *GORMHouseholdInvitationRepository) HasPendingByHouseholdAndUser(householdID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.HouseholdInvitation{}).
		Where("household_id = ? AND invited_user_id = ? AND status = ?", householdID, userID, models.InvitationPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation for user %s: %w", userID, err)
	}
	return count > 0, nil
}

// HasPendingByHouseholdAndEmail reports whether a PENDING invitation for the
// normalized email already exists in the household.
func (r *GORMHouseholdInvitationRepository) HasPendingByHouseholdAndEmail(householdID, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.HouseholdInvitation{}).
		Where("household_id = ? AND invited_email = ? AND status = ?", householdID, email, models.InvitationPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation for email %s: %w", email, err)
	}
	return count > 0, nil
}

// FindByInvitedUserID returns all invitations addressed to the user.
func (r *GORMHouseholdInvitationRepository) FindByInvitedUserID(userID string) ([]models.HouseholdInvitation, error) {
	var invitations []models.HouseholdInvitation
	if err := r.db.Where("invited_user_id = ?", userID).Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("failed to find invitations for user %s: %w", userID, err)
	}
	return invitations, nil
}

// LinkEmailInvitationsToUser bulk-updates all PENDING email-only invitations
// matching the normalized email so they reference the user instead.
func (r *GORMHouseholdInvitationRepository) LinkEmailInvitationsToUser(userID, email string) (int64, error) {
	res := r.db.Model(&models.HouseholdInvitation{}).
		Where("invited_email = ? AND status = ? AND invited_user_id IS NULL", email, models.InvitationPending).
		Updates(map[string]interface{}{
			"invited_user_id": userID,
			"invited_email":   nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to link email invitations to user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
