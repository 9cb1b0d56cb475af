package repositories

import (
	"fmt"
	"strings"

	"pantri/internal/models"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMHouseholdRepository is a GORM implementation of HouseholdRepository.
type GORMHouseholdRepository struct {
	db *gorm.DB
}

// NewGORMHouseholdRepository creates a new instance of GORMHouseholdRepository.
func NewGORMHouseholdRepository(db *gorm.DB) *GORMHouseholdRepository {
	return &GORMHouseholdRepository{
		db: db,
	}
}

// Create creates a new household in the database.
func (r *GORMHouseholdRepository) Create(household *models.Household) error {
	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	if err := r.db.Create(household).Error; err != nil {
		return fmt.Errorf("failed to create household: %w", err)
	}
	return nil
}

// GetByID retrieves a household by its ID from the database.
func (r *GORMHouseholdRepository) GetByID(id string) (*models.Household, error) {
	var household models.Household
	if err := r.db.First(&household, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("household with ID %s: %w", id, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get household by ID %s: %w", id, err)
	}
	return &household, nil
}

// GetByName retrieves a household by its exact name from the database.
func (r *GORMHouseholdRepository) GetByName(name string) (*models.Household, error) {
	var household models.Household
	if err := r.db.First(&household, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("household with name %s: %w", name, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get household by name %s: %w", name, err)
	}
	return &household, nil
}

// ExistsByName reports whether a household with the exact name exists.
func (r *GORMHouseholdRepository) ExistsByName(name string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Household{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check household name %s: %w", name, err)
	}
	return count > 0, nil
}

// Save persists all fields of an existing household.
func (r *GORMHouseholdRepository) Save(household *models.Household) error {
	res := r.db.Save(household)
	if res.Error != nil {
		return fmt.Errorf("failed to save household: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("household with ID %s: %w", household.ID, errdefs.ErrNotFound)
	}
	return nil
}

// Delete deletes a household by its ID from the database.
func (r *GORMHouseholdRepository) Delete(id string) error {
	res := r.db.Delete(&models.Household{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete household: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("household with ID %s: %w", id, errdefs.ErrNotFound)
	}
	return nil
}

// SearchByName matches households by case-insensitive substring on name.
func (r *GORMHouseholdRepository) SearchByName(term string) ([]models.Household, error) {
	var households []models.Household
	pattern := "%" + strings.ToLower(term) + "%"
	if err := r.db.Where("LOWER(name) LIKE ?", pattern).Find(&households).Error; err != nil {
		return nil, fmt.Errorf("failed to search households: %w", err)
	}
	return households, nil
}

// FindByUserID returns all households the user is a member of.
func (r *GORMHouseholdRepository) FindByUserID(userID string) ([]models.Household, error) {
	var households []models.Household
	err := r.db.
		Joins("JOIN household_members ON household_members.household_id = households.id").
		Where("household_members.user_id = ? AND household_members.deleted_at IS NULL", userID).
		Find(&households).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find households for user %s: %w", userID, err)
	}
	return households, nil
}

// GORMHouseholdMemberRepository is a GORM implementation of HouseholdMemberRepository.
type GORMHouseholdMemberRepository struct {
	db *gorm.DB
}

// NewGORMHouseholdMemberRepository creates a new instance of GORMHouseholdMemberRepository.
func NewGORMHouseholdMemberRepository(db *gorm.DB) *GORMHouseholdMemberRepository {
	return &GORMHouseholdMemberRepository{
		db: db,
	}
}

// Create creates a new membership row in the database.
func (r *GORMHouseholdMemberRepository) Create(member *models.HouseholdMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if err := r.db.Create(member).Error; err != nil {
		return fmt.Errorf("failed to create household member: %w", err)
	}
	return nil
}

// GetByID retrieves a membership row by its ID from the database.
func (r *GORMHouseholdMemberRepository) GetByID(id string) (*models.HouseholdMember, error) {
	var member models.HouseholdMember
	if err := r.db.First(&member, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("household member with ID %s: %w", id, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get household member by ID %s: %w", id, err)
	}
	return &member, nil
}

// GetByHouseholdAndUser retrieves the membership of a user in a household.
func (r *GORMHouseholdMemberRepository) GetByHouseholdAndUser(householdID, userID string) (*models.HouseholdMember, error) {
	var member models.HouseholdMember
	if err := r.db.First(&member, "household_id = ? AND user_id = ?", householdID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %s is not a member of household %s: %w", userID, householdID, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get membership for user %s in household %s: %w", userID, householdID, err)
	}
	return &member, nil
}

// ExistsByHouseholdAndUser reports whether the user is a member of the household.
func (r *GORMHouseholdMemberRepository) ExistsByHouseholdAndUser(householdID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND user_id = ?", householdID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership for user %s in household %s: %w", userID, householdID, err)
	}
	return count > 0, nil
}

// FindByHouseholdID returns all memberships of a household.
func (r *GORMHouseholdMemberRepository) FindByHouseholdID(householdID string) ([]models.HouseholdMember, error) {
	var members []models.HouseholdMember
	if err := r.db.Where("household_id = ?", householdID).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to find members of household %s: %w", householdID, err)
	}
	return members, nil
}

// FindByUserID returns all memberships of a user.
func (r *GORMHouseholdMemberRepository) FindByUserID(userID string) ([]models.HouseholdMember, error) {
	var members []models.HouseholdMember
	if err := r.db.Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to find memberships of user %s: %w", userID, err)
	}
	return members, nil
}

// Save persists all fields of an existing membership row.
func (r *GORMHouseholdMemberRepository) Save(member *models.HouseholdMember) error {
	res := r.db.Save(member)
	if res.Error != nil {
		return fmt.Errorf("failed to save household member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("household member with ID %s: %w", member.ID, errdefs.ErrNotFound)
	}
	return nil
}

// Delete deletes a membership row by its ID from the database.
func (r *GORMHouseholdMemberRepository) Delete(id string) error {
	res := r.db.Delete(&models.HouseholdMember{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete household member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("household member with ID %s: %w", id, errdefs.ErrNotFound)
	}
	return nil
}

// DeleteByHouseholdID deletes all membership rows of a household.
func (r *GORMHouseholdMemberRepository) DeleteByHouseholdID(householdID string) error {
	if err := r.db.Delete(&models.HouseholdMember{}, "household_id = ?", householdID).Error; err != nil {
		return fmt.Errorf("failed to delete members of household %s: %w", householdID, err)
	}
	return nil
}
