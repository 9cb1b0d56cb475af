package services

import (
	"fmt"
	"strings"

	"pantri/internal/models"
	"pantri/internal/repositories"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

// LocationService handles business logic for storage locations scoped to a
// household.
type LocationService struct {
	identity   IdentityResolver
	locations  repositories.LocationRepository
	households repositories.HouseholdRepository
	members    repositories.HouseholdMemberRepository
}

// NewLocationService creates a new LocationService.
func NewLocationService(identity IdentityResolver, locations repositories.LocationRepository, households repositories.HouseholdRepository, members repositories.HouseholdMemberRepository) *LocationService {
	return &LocationService{
		identity:   identity,
		locations:  locations,
		households: households,
		members:    members,
	}
}

func (s *LocationService) requireMember(householdID, userID string) error {
	isMember, err := s.members.ExistsByHouseholdAndUser(householdID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("user %s is not a member of household %s: %w", userID, householdID, errdefs.ErrPermissionDenied)
	}
	return nil
}

// CreateLocation creates a named storage location in the household. The name
// is trimmed and must be non-blank and unique within the household,
// case-sensitively.
func (s *LocationService) CreateLocation(actorID, householdID, name, description string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("location name must not be blank: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.households.GetByID(householdID); err != nil {
		return nil, err
	}
	if err := s.requireMember(householdID, actor.ID); err != nil {
		return nil, err
	}

	exists, err := s.locations.ExistsByHouseholdIDAndName(householdID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("location name '%s' is already used in household %s: %w", name, householdID, errdefs.ErrConflict)
	}

	location := &models.Location{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.locations.Create(location); err != nil {
		return nil, err
	}
	return location, nil
}

// GetLocation returns one location if the actor is a member of its household.
func (s *LocationService) GetLocation(actorID, locationID string) (*models.Location, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	location, err := s.locations.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(location.HouseholdID, actor.ID); err != nil {
		return nil, err
	}
	return location, nil
}

// GetHouseholdLocations lists the household's locations.
func (s *LocationService) GetHouseholdLocations(actorID, householdID string) ([]models.Location, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.households.GetByID(householdID); err != nil {
		return nil, err
	}
	if err := s.requireMember(householdID, actor.ID); err != nil {
		return nil, err
	}
	return s.locations.FindByHouseholdID(householdID)
}

// UpdateLocation replaces the location's name and description. Name
// uniqueness is re-checked only when the name actually changes.
func (s *LocationService) UpdateLocation(actorID, locationID, name, description string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("location name must not be blank: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	location, err := s.locations.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(location.HouseholdID, actor.ID); err != nil {
		return nil, err
	}

	if name != location.Name {
		exists, err := s.locations.ExistsByHouseholdIDAndName(location.HouseholdID, name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("location name '%s' is already used in household %s: %w", name, location.HouseholdID, errdefs.ErrConflict)
		}
	}

	location.Name = name
	location.Description = strings.TrimSpace(description)
	if err := s.locations.Save(location); err != nil {
		return nil, err
	}
	return location, nil
}

// PatchLocation applies a partial update. Unlike the pantry item patch,
// unsupported fields are rejected with a validation error.
func (s *LocationService) PatchLocation(actorID, locationID string, fields map[string]interface{}) (*models.Location, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	location, err := s.locations.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(location.HouseholdID, actor.ID); err != nil {
		return nil, err
	}

	for key, raw := range fields {
		switch key {
		case "name":
			value, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("location name must be a string: %w", errdefs.ErrInvalidArgument)
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return nil, fmt.Errorf("location name must not be blank: %w", errdefs.ErrInvalidArgument)
			}
			if value != location.Name {
				exists, err := s.locations.ExistsByHouseholdIDAndName(location.HouseholdID, value)
				if err != nil {
					return nil, err
				}
				if exists {
					return nil, fmt.Errorf("location name '%s' is already used in household %s: %w", value, location.HouseholdID, errdefs.ErrConflict)
				}
			}
			location.Name = value
		case "description":
			if raw == nil {
				location.Description = ""
				continue
			}
			value, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("location description must be a string or null: %w", errdefs.ErrInvalidArgument)
			}
			location.Description = strings.TrimSpace(value)
		default:
			return nil, fmt.Errorf("unsupported field '%s' in location patch: %w", key, errdefs.ErrInvalidArgument)
		}
	}

	if err := s.locations.Save(location); err != nil {
		return nil, err
	}
	return location, nil
}

// DeleteLocation deletes the location. A location still holding pantry items
// cannot be deleted; the repository surfaces that as a domain error.
func (s *LocationService) DeleteLocation(actorID, locationID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	location, err := s.locations.GetByID(locationID)
	if err != nil {
		return err
	}
	if err := s.requireMember(location.HouseholdID, actor.ID); err != nil {
		return err
	}
	return s.locations.Delete(location.ID)
}
