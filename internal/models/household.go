package models

import "gorm.io/gorm"

// HouseholdRole is a member's role within a household.
// Roles are ordered: MEMBER < ADMIN < OWNER.
type HouseholdRole string

const (
	RoleOwner  HouseholdRole = "OWNER"
	RoleAdmin  HouseholdRole = "ADMIN"
	RoleMember HouseholdRole = "MEMBER"
)

// Rank returns the position of the role in the hierarchy. Unknown roles rank
// below MEMBER so they never pass a permission check.
func (r HouseholdRole) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// AtLeast reports whether r grants at least the privileges of other.
func (r HouseholdRole) AtLeast(other HouseholdRole) bool {
	return r.Rank() >= other.Rank()
}

// Valid reports whether r is one of the known household roles.
func (r HouseholdRole) Valid() bool {
	return r.Rank() > 0
}

// Household is a shared group owning members, storage locations and, through
// those locations, pantry items.
type Household struct {
	ID        string            `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string            `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Members   []HouseholdMember `json:"members,omitempty" gorm:"foreignKey:HouseholdID"`
	Locations []Location        `json:"locations,omitempty" gorm:"foreignKey:HouseholdID"`
	gorm.Model
}

// HouseholdMember links a user to a household with a role.
// Invariant: exactly one member per household holds the OWNER role at all times.
type HouseholdMember struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	HouseholdID string        `json:"household_id" gorm:"type:varchar(36);uniqueIndex:idx_household_user" validate:"required"`
	UserID      string        `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_household_user" validate:"required"`
	Role        HouseholdRole `json:"role" gorm:"type:varchar(16)" validate:"required"`
	gorm.Model
}
