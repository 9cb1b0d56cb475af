package repositories

import "pantri/internal/models"

// HouseholdRepository defines the interface for household data access.
type HouseholdRepository interface {
	Create(household *models.Household) error
	GetByID(id string) (*models.Household, error)
	GetByName(name string) (*models.Household, error)
	ExistsByName(name string) (bool, error)
	Save(household *models.Household) error
	Delete(id string) error
	// SearchByName matches households by case-insensitive substring on name.
	SearchByName(term string) ([]models.Household, error)
	// FindByUserID returns all households the user is a member of.
	FindByUserID(userID string) ([]models.Household, error)
}

// HouseholdMemberRepository defines the interface for membership data access.
type HouseholdMemberRepository interface {
	Create(member *models.HouseholdMember) error
	GetByID(id string) (*models.HouseholdMember, error)
	GetByHouseholdAndUser(householdID, userID string) (*models.HouseholdMember, error)
	ExistsByHouseholdAndUser(householdID, userID string) (bool, error)
	FindByHouseholdID(householdID string) ([]models.HouseholdMember, error)
	FindByUserID(userID string) ([]models.HouseholdMember, error)
	Save(member *models.HouseholdMember) error
	Delete(id string) error
	DeleteByHouseholdID(householdID string) error
}
