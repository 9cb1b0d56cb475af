package services

import (
	"fmt"

	"pantri/internal/models"
	"pantri/internal/repositories"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

// HouseholdMemberService handles business logic for household memberships.
type HouseholdMemberService struct {
	identity   IdentityResolver
	members    repositories.HouseholdMemberRepository
	households repositories.HouseholdRepository
	users      repositories.UserRepository
}

// NewHouseholdMemberService creates a new HouseholdMemberService.
func NewHouseholdMemberService(identity IdentityResolver, members repositories.HouseholdMemberRepository, households repositories.HouseholdRepository, users repositories.UserRepository) *HouseholdMemberService {
	return &HouseholdMemberService{
		identity:   identity,
		members:    members,
		households: households,
		users:      users,
	}
}

// AddMemberToHousehold adds an existing user to the household. The caller must
// hold the ADMIN role or better; the OWNER role can never be assigned.
func (s *HouseholdMemberService) AddMemberToHousehold(actorID, householdID, userID string, role models.HouseholdRole) (*models.HouseholdMember, error) {
	if role == models.RoleOwner {
		return nil, fmt.Errorf("a member cannot be added as OWNER: %w", errdefs.ErrInvalidArgument)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown household role '%s': %w", role, errdefs.ErrInvalidArgument)
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.households.GetByID(householdID); err != nil {
		return nil, err
	}
	caller, err := s.members.GetByHouseholdAndUser(householdID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("household %s: %w", householdID, errdefs.ErrNotFound)
	}
	if !caller.Role.AtLeast(models.RoleAdmin) {
		return nil, fmt.Errorf("adding members requires the ADMIN role: %w", errdefs.ErrPermissionDenied)
	}

	target, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	alreadyMember, err := s.members.ExistsByHouseholdAndUser(householdID, target.ID)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, fmt.Errorf("user %s is already a member of household %s: %w", target.ID, householdID, errdefs.ErrConflict)
	}

	member := &models.HouseholdMember{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		UserID:      target.ID,
		Role:        role,
	}
	if err := s.members.Create(member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetHouseholdMembers lists the household's memberships. The caller must be a
// member.
func (s *HouseholdMemberService) GetHouseholdMembers(actorID, householdID string) ([]models.HouseholdMember, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.GetByHouseholdAndUser(householdID, actor.ID); err != nil {
		return nil, fmt.Errorf("household %s: %w", householdID, errdefs.ErrNotFound)
	}
	return s.members.FindByHouseholdID(householdID)
}

// GetMemberByID returns one membership row. A row that exists but belongs to a
// different household than requested is reported as not found.
func (s *HouseholdMemberService) GetMemberByID(actorID, householdID, memberID string) (*models.HouseholdMember, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.GetByHouseholdAndUser(householdID, actor.ID); err != nil {
		return nil, fmt.Errorf("household %s: %w", householdID, errdefs.ErrNotFound)
	}
	member, err := s.members.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if member.HouseholdID != householdID {
		return nil, fmt.Errorf("member %s in household %s: %w", memberID, householdID, errdefs.ErrNotFound)
	}
	return member, nil
}

// RemoveMember removes a membership row. The OWNER can never be removed, and
// an ADMIN may not remove another ADMIN.
func (s *HouseholdMemberService) RemoveMember(actorID, householdID, memberID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	caller, err := s.members.GetByHouseholdAndUser(householdID, actor.ID)
	if err != nil {
		return fmt.Errorf("household %s: %w", householdID, errdefs.ErrNotFound)
	}
	if !caller.Role.AtLeast(models.RoleAdmin) {
		return fmt.Errorf("removing members requires the ADMIN role: %w", errdefs.ErrPermissionDenied)
	}

	target, err := s.members.GetByID(memberID)
	if err != nil {
		return err
	}
	if target.HouseholdID != householdID {
		return fmt.Errorf("member %s in household %s: %w", memberID, householdID, errdefs.ErrNotFound)
	}
	if target.Role == models.RoleOwner {
		return fmt.Errorf("the OWNER cannot be removed from the household: %w", errdefs.ErrFailedPrecondition)
	}
	if target.Role == models.RoleAdmin && caller.Role != models.RoleOwner {
		return fmt.Errorf("only the OWNER can remove an ADMIN: %w", errdefs.ErrPermissionDenied)
	}

	return s.members.Delete(target.ID)
}

// UpdateMemberRole changes a member's role, with the same permission matrix as
// HouseholdService.ChangeMemberRole.
func (s *HouseholdMemberService) UpdateMemberRole(actorID, householdID, memberID string, role models.HouseholdRole) (*models.HouseholdMember, error) {
	return changeMemberRole(s.identity, s.members, actorID, householdID, memberID, role)
}
