package services

import (
	"fmt"
	"strings"

	"pantri/internal/models"
	"pantri/internal/repositories"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

// HouseholdService handles business logic for households and their role
// transitions. A household that the actor is not a member of behaves as if it
// did not exist.
type HouseholdService struct {
	identity   IdentityResolver
	households repositories.HouseholdRepository
	members    repositories.HouseholdMemberRepository
}

// NewHouseholdService creates a new HouseholdService.
func NewHouseholdService(identity IdentityResolver, households repositories.HouseholdRepository, members repositories.HouseholdMemberRepository) *HouseholdService {
	return &HouseholdService{
		identity:   identity,
		households: households,
		members:    members,
	}
}

// requireMembership returns the actor's membership in the household, hiding
// non-membership behind a not-found error.
func (s *HouseholdService) requireMembership(householdID, userID string) (*models.HouseholdMember, error) {
	membership, err := s.members.GetByHouseholdAndUser(householdID, userID)
	if err != nil {
		return nil, fmt.Errorf("household %s: %w", householdID, errdefs.ErrNotFound)
	}
	return membership, nil
}

// CreateHousehold creates a household with a globally unique name and makes
// the caller its OWNER.
func (s *HouseholdService) CreateHousehold(actorID, name string) (*models.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("household name must not be blank: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}

	exists, err := s.households.ExistsByName(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("household name '%s' is already taken: %w", name, errdefs.ErrConflict)
	}

	household := &models.Household{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := s.households.Create(household); err != nil {
		return nil, err
	}

	owner := &models.HouseholdMember{
		ID:          uuid.New().String(),
		HouseholdID: household.ID,
		UserID:      actor.ID,
		Role:        models.RoleOwner,
	}
	if err := s.members.Create(owner); err != nil {
		// The membership write failed; drop the half-created household so the
		// caller sees the operation as atomic.
		_ = s.households.Delete(household.ID)
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}
	return household, nil
}

// GetHouseholdByID returns the household if the actor is a member of it.
func (s *HouseholdService) GetHouseholdByID(actorID, householdID string) (*models.Household, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	household, err := s.households.GetByID(householdID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMembership(householdID, actor.ID); err != nil {
		return nil, err
	}
	return household, nil
}

// GetUserHouseholds returns all households the actor belongs to.
func (s *HouseholdService) GetUserHouseholds(actorID string) ([]models.Household, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	return s.households.FindByUserID(actor.ID)
}

// UpdateHousehold replaces the household's name. Requires the ADMIN role or
// better; renaming to the current name is permitted.
func (s *HouseholdService) UpdateHousehold(actorID, householdID, name string) (*models.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("household name must not be blank: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	household, err := s.households.GetByID(householdID)
	if err != nil {
		return nil, err
	}
	membership, err := s.requireMembership(householdID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !membership.Role.AtLeast(models.RoleAdmin) {
		return nil, fmt.Errorf("updating a household requires the ADMIN role: %w", errdefs.ErrPermissionDenied)
	}

	if name != household.Name {
		exists, err := s.households.ExistsByName(name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("household name '%s' is already taken: %w", name, errdefs.ErrConflict)
		}
	}

	household.Name = name
	if err := s.households.Save(household); err != nil {
		return nil, err
	}
	return household, nil
}

// PatchHousehold applies a partial update. Unrecognized fields are ignored.
func (s *HouseholdService) PatchHousehold(actorID, householdID string, fields map[string]interface{}) (*models.Household, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	household, err := s.households.GetByID(householdID)
	if err != nil {
		return nil, err
	}
	membership, err := s.requireMembership(householdID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !membership.Role.AtLeast(models.RoleAdmin) {
		return nil, fmt.Errorf("updating a household requires the ADMIN role: %w", errdefs.ErrPermissionDenied)
	}

	if raw, ok := fields["name"]; ok {
		name, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("household name must be a string: %w", errdefs.ErrInvalidArgument)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("household name must not be blank: %w", errdefs.ErrInvalidArgument)
		}
		if name != household.Name {
			exists, err := s.households.ExistsByName(name)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("household name '%s' is already taken: %w", name, errdefs.ErrConflict)
			}
		}
		household.Name = name
	}

	if err := s.households.Save(household); err != nil {
		return nil, err
	}
	return household, nil
}

// DeleteHousehold deletes the household and all of its memberships. Only the
// OWNER may delete.
func (s *HouseholdService) DeleteHousehold(actorID, householdID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	if _, err := s.households.GetByID(householdID); err != nil {
		return err
	}
	membership, err := s.requireMembership(householdID, actor.ID)
	if err != nil {
		return err
	}
	if membership.Role != models.RoleOwner {
		return fmt.Errorf("only the OWNER can delete a household: %w", errdefs.ErrPermissionDenied)
	}

	if err := s.members.DeleteByHouseholdID(householdID); err != nil {
		return err
	}
	return s.households.Delete(householdID)
}

// LeaveHousehold removes the actor's own membership. The OWNER cannot leave;
// ownership must be transferred first.
func (s *HouseholdService) LeaveHousehold(actorID, householdID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	membership, err := s.requireMembership(householdID, actor.ID)
	if err != nil {
		return err
	}
	if membership.Role == models.RoleOwner {
		return fmt.Errorf("the OWNER cannot leave the household, transfer ownership first: %w", errdefs.ErrFailedPrecondition)
	}
	return s.members.Delete(membership.ID)
}

// TransferOwnership moves the OWNER role from the actor to another member.
// The old owner is demoted to ADMIN before the new owner is promoted, so
// exactly one OWNER exists at every accepted state.
func (s *HouseholdService) TransferOwnership(actorID, householdID, newOwnerUserID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	current, err := s.requireMembership(householdID, actor.ID)
	if err != nil {
		return err
	}
	if current.Role != models.RoleOwner {
		return fmt.Errorf("only the current OWNER can transfer ownership: %w", errdefs.ErrPermissionDenied)
	}
	if newOwnerUserID == actor.ID {
		return fmt.Errorf("cannot transfer ownership to the current owner: %w", errdefs.ErrInvalidArgument)
	}

	target, err := s.members.GetByHouseholdAndUser(householdID, newOwnerUserID)
	if err != nil {
		return fmt.Errorf("user %s is not a member of household %s: %w", newOwnerUserID, householdID, errdefs.ErrNotFound)
	}

	current.Role = models.RoleAdmin
	if err := s.members.Save(current); err != nil {
		return err
	}
	target.Role = models.RoleOwner
	if err := s.members.Save(target); err != nil {
		return err
	}
	return nil
}

// SearchHouseholds matches households by case-insensitive substring on the
// name and returns only those the actor is a member of. Matches the actor
// cannot see are dropped silently, not errored.
func (s *HouseholdService) SearchHouseholds(actorID, term string) ([]models.Household, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	matches, err := s.households.SearchByName(term)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Household, 0, len(matches))
	for _, household := range matches {
		isMember, err := s.members.ExistsByHouseholdAndUser(household.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if isMember {
			visible = append(visible, household)
		}
	}
	return visible, nil
}

// ChangeMemberRole changes another member's role within the household.
// The OWNER role can never be assigned here; ownership only moves through
// TransferOwnership. ADMIN callers may only change MEMBER rows; touching an
// ADMIN or the OWNER requires the OWNER.
func (s *HouseholdService) ChangeMemberRole(actorID, householdID, memberID string, role models.HouseholdRole) (*models.HouseholdMember, error) {
	return changeMemberRole(s.identity, s.members, actorID, householdID, memberID, role)
}

// changeMemberRole implements the role-change permission matrix shared by
// HouseholdService.ChangeMemberRole and HouseholdMemberService.UpdateMemberRole.
func changeMemberRole(identity IdentityResolver, members repositories.HouseholdMemberRepository, actorID, householdID, memberID string, role models.HouseholdRole) (*models.HouseholdMember, error) {
	if role == models.RoleOwner {
		return nil, fmt.Errorf("the OWNER role cannot be assigned through a role change: %w", errdefs.ErrInvalidArgument)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown household role '%s': %w", role, errdefs.ErrInvalidArgument)
	}

	actor, err := identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	caller, err := members.GetByHouseholdAndUser(householdID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("household %s: %w", householdID, errdefs.ErrNotFound)
	}
	target, err := members.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if target.HouseholdID != householdID {
		// A member row of a different household is treated as absent, not as
		// a data integrity failure.
		return nil, fmt.Errorf("member %s in household %s: %w", memberID, householdID, errdefs.ErrNotFound)
	}

	if !caller.Role.AtLeast(models.RoleAdmin) {
		return nil, fmt.Errorf("changing member roles requires the ADMIN role: %w", errdefs.ErrPermissionDenied)
	}
	if target.Role.AtLeast(models.RoleAdmin) && caller.Role != models.RoleOwner {
		return nil, fmt.Errorf("only the OWNER can change an %s member's role: %w", target.Role, errdefs.ErrPermissionDenied)
	}
	if target.Role == models.RoleOwner {
		return nil, fmt.Errorf("the OWNER's role only changes through an ownership transfer: %w", errdefs.ErrFailedPrecondition)
	}

	target.Role = role
	if err := members.Save(target); err != nil {
		return nil, err
	}
	return target, nil
}
